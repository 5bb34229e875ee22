package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal UI and blocks until the user quits or ctx is
// cancelled. The shell's window and picker are bound to the program for
// the duration of the call.
func Run(ctx context.Context, opts Options) error {
	app, err := New(ctx, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	shell := opts.Shell
	shell.Attach(window{send: p.Send})
	shell.SetPicker(overlayPicker{send: p.Send})
	shell.OnNotify(func(s string) { p.Send(notifyMsg{text: s}) })
	defer func() {
		shell.Detach()
		shell.OnNotify(nil)
	}()

	app.log.Info("terminal ui started")
	_, err = p.Run()
	app.cancel()

	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
