package ui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the quiz TUI. It returns the failure on screen when the user
// quits from an error, so callers can map it to an exit code.
func Run(ctx context.Context, cfg Config) error {
	m := NewModel(ctx, cfg)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	fm, ok := final.(Model)
	if !ok {
		return nil
	}
	fm.cancel()
	if fm.state.model != nil {
		if err := fm.state.model.Close(); err != nil {
			slog.Warn("close model", "error", err)
		}
	}
	if fm.phase == phaseError {
		return fm.failure
	}
	return nil
}
