package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/anidex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
	AddedListView
	ChangeListView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.SyncEngine
	catalogName  string
	width        int
	height       int
	addedList    list.Model
	changeList   list.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.SyncResult
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.SyncEngine, catalogName string) *Model {
	return &Model{
		ctx:         ctx,
		view:        ConfirmView,
		engine:      engine,
		catalogName: catalogName,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.addedList.Width() == 0 {
			m.addedList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.changeList.Width() == 0 {
			m.changeList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case AddedListView, ChangeListView:
			return m.handleListKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		if m.result != nil {
			m.buildLists()
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	case AddedListView:
		return m.renderList(m.addedList)
	case ChangeListView:
		return m.renderList(m.changeList)
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		return m, tea.Quit
	case "y", "enter":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		if m.result != nil && len(m.result.Report.Added) > 0 {
			m.view = AddedListView
		}
		return m, nil
	case "c":
		if m.result != nil && len(m.result.Report.Changed) > 0 {
			m.view = ChangeListView
		}
		return m, nil
	case "r":
		m.result = nil
		m.err = nil
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ResultView
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case AddedListView:
		m.addedList, cmd = m.addedList.Update(msg)
	case ChangeListView:
		m.changeList, cmd = m.changeList.Update(msg)
	}
	return m, cmd
}

func (m *Model) buildLists() {
	addedItems := make([]list.Item, len(m.result.Report.Added))
	for i, item := range m.result.Report.Added {
		addedItems[i] = seriesItem{item: item}
	}
	m.addedList = list.New(addedItems, list.NewDefaultDelegate(), 0, 0)
	m.addedList.Title = "Added series"
	m.addedList.SetSize(m.width-4, m.height-8)

	changeItems := make([]list.Item, len(m.result.Report.Changed))
	for i, change := range m.result.Report.Changed {
		changeItems[i] = changeItem{change: change}
	}
	m.changeList = list.New(changeItems, list.NewDefaultDelegate(), 0, 0)
	m.changeList.Title = "Status changes"
	m.changeList.SetSize(m.width-4, m.height-8)
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.engine.Run(m.ctx, progressChan)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync catalog from %s?", m.catalogName))
	info := "\nThis fetches the full catalog, enriches it, and rewrites the snapshot.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing catalog")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchCatalog:
		phase = "Fetching catalog..."
	case tasks.LookupBatch:
		phase = fmt.Sprintf("Looking up batches (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.DiffSnapshots:
		phase = "Comparing snapshots..."
	case tasks.WriteSnapshot, tasks.WriteChangeLog:
		phase = "Writing results..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderList(l list.Model) string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", l.View(), helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Sync complete")
	info := fmt.Sprintf(
		"\nEntries: %d -> %d\nAdded: %d\nRemoved: %d\nStatus changes: %d\nEnriched: %d (%d not found)",
		m.result.Report.TotalOld,
		m.result.Report.TotalNew,
		len(m.result.Report.Added),
		len(m.result.Report.Removed),
		len(m.result.Report.Changed),
		m.result.Stats.Matched,
		m.result.Stats.Unmatched,
	)

	var warnings string
	if m.result.Stats.Unmatched > 0 {
		warnings = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d series have no metadata match", m.result.Stats.Unmatched)))
	}

	helpKeys := []key.Binding{m.keys.added, m.keys.changes, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warnings, helpView)
}
