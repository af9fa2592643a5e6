package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/desertthunder/anidex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for catalog sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	if r.catalog == nil || r.lookup == nil {
		return fmt.Errorf("%w: catalog or lookup service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/anidex-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := r.newEngine(nil)

	model := ui.NewModel(ctx, engine, r.catalog.Name())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
