// Package ui renders download jobs in a terminal UI. It implements the
// notification channel: every status message becomes a row that later
// edits update in place.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"mediafetch/internal/notify"
)

// ErrInterrupted is returned when the user closes the UI before all jobs
// finished.
var ErrInterrupted = errors.New("interrupted")

// Notifier forwards status messages to a running Program.
type Notifier struct {
	send func(tea.Msg)
}

func (n *Notifier) SendInitial(_ context.Context, text string) (notify.Handle, error) {
	h := notify.Handle(uuid.NewString()[:8])
	n.send(rowOpenMsg{handle: h, text: text})
	return h, nil
}

func (n *Notifier) Edit(_ context.Context, h notify.Handle, text string, opts notify.Options) error {
	n.send(rowEditMsg{handle: h, text: text, opts: opts})
	return nil
}

// Run shows the UI while fn runs and returns fn's error. Jobs are not
// cancelled when the user quits early; Run reports on w and waits for
// them.
func Run(ctx context.Context, title string, w io.Writer, fn func(context.Context, notify.Notifier) error) error {
	prog := tea.NewProgram(NewModel(title), tea.WithContext(ctx), tea.WithOutput(w))
	n := &Notifier{send: prog.Send}

	errc := make(chan error, 1)
	go func() {
		err := fn(ctx, n)
		errc <- err
		prog.Send(doneMsg{err: err})
	}()

	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok && fm.done {
		return fm.err
	}
	fmt.Fprintln(w, "Display closed; waiting for running downloads to finish...")
	if jobErr := <-errc; jobErr != nil {
		return jobErr
	}
	return ErrInterrupted
}
