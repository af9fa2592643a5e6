// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for catalog synchronization:
//  1. [ConfirmView] : Confirm the sync operation
//  2. [SyncView] : Monitor real-time pipeline progress
//  3. [ResultView] : Display run counters
//  4. [AddedListView] : Browse series added since the last run
//  5. [ChangeListView] : Browse status transitions
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PipelineEngine, providing non-blocking status reporting during sync runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
