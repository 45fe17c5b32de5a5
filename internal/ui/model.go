package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mediafetch/internal/notify"
)

type Model struct {
	title  string
	order  []notify.Handle
	rows   map[notify.Handle]*row
	styles Styles
	width  int

	done        bool
	err         error
	interrupted bool
}

func NewModel(title string) Model {
	return Model{
		title:  title,
		rows:   make(map[notify.Handle]*row),
		styles: defaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case rowOpenMsg:
		r := newRow(msg.handle, msg.text, m.styles)
		m.rows[msg.handle] = r
		m.order = append(m.order, msg.handle)
		return m, r.spinner.Tick

	case rowEditMsg:
		r, ok := m.rows[msg.handle]
		if !ok {
			return m, nil
		}
		r.text = msg.text
		if msg.opts.Rich {
			r.text = notify.PlainLinks(msg.text)
		}
		r.percent = msg.opts.Percent
		r.final = msg.opts.Final
		r.failed = msg.opts.Failed
		return m, nil

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, h := range m.order {
		r := m.rows[h]
		if r.final {
			continue
		}
		var c tea.Cmd
		r.spinner, c = r.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewRows()
}
