package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nalgeon/be"

	"mediafetch/internal/notify"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_RowLifecycle(t *testing.T) {
	m := NewModel("mediafetch")
	m = update(t, m, rowOpenMsg{handle: "a", text: "Downloading video in best quality... ⏳"})
	m = update(t, m, rowOpenMsg{handle: "b", text: "Downloading audio in best quality... ⏳"})
	be.Equal(t, len(m.order), 2)

	m = update(t, m, rowEditMsg{handle: "a", text: "Downloading: 42%", opts: notify.Options{Percent: 42}})
	view := m.View()
	be.Equal(t, strings.Contains(view, "Jobs: 0/2 done"), true)
	be.Equal(t, strings.Contains(view, "42%"), true)

	m = update(t, m, rowEditMsg{
		handle: "a",
		text:   `Done! <a href="http://x/y">Download file</a>`,
		opts:   notify.Options{Percent: 100, Rich: true, Final: true},
	})
	m = update(t, m, rowEditMsg{handle: "b", text: "exit code 1", opts: notify.Options{Percent: -1, Final: true, Failed: true}})
	view = m.View()
	be.Equal(t, strings.Contains(view, "Jobs: 2/2 done"), true)
	be.Equal(t, strings.Contains(view, "Download file: http://x/y"), true)
	be.Equal(t, strings.Contains(view, "✗ failed"), true)
	be.Equal(t, strings.Contains(view, "✓ done"), true)
}

func TestModel_UnknownHandleIgnored(t *testing.T) {
	m := NewModel("t")
	m = update(t, m, rowEditMsg{handle: "zz", text: "x"})
	be.Equal(t, len(m.order), 0)
}

func TestModel_DoneQuits(t *testing.T) {
	m := NewModel("t")
	next, cmd := m.Update(doneMsg{})
	be.Equal(t, next.(Model).done, true)
	be.Equal(t, cmd != nil, true)
}

func TestNotifier_Sends(t *testing.T) {
	var got []tea.Msg
	n := &Notifier{send: func(m tea.Msg) { got = append(got, m) }}
	h, err := n.SendInitial(context.Background(), "hi")
	be.Equal(t, err, nil)
	be.Equal(t, n.Edit(context.Background(), h, "5%", notify.Options{Percent: 5}), nil)
	be.Equal(t, len(got), 2)
	be.Equal(t, got[0].(rowOpenMsg).handle, h)
	be.Equal(t, got[1].(rowEditMsg).opts.Percent, 5)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 4, "abc…"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
