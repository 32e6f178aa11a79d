package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the conversion pipeline with an interactive progress monitor.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	jobID, err := requireJobID(cmd)
	if err != nil {
		return err
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering.
	// Must happen before the engine is built so it inherits the file logger.
	fileLogger, err := shared.NewFileLogger("./tmp/medley-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, jobID)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the interactive progress monitor.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Run a conversion with an interactive progress monitor",
		ArgsUsage: "<job-id>",
		Action:    r.TUI,
	}
}
