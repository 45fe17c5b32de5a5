package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"mediafetch/internal/notify"
)

// row mirrors one status message.
type row struct {
	handle  notify.Handle
	text    string
	percent int // -1 means unknown
	final   bool
	failed  bool

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newRow(h notify.Handle, text string, styles Styles) *row {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = styles.Spinner
	return &row{
		handle:  h,
		text:    text,
		percent: -1,
		spinner: sp,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(40),
		),
	}
}

type rowOpenMsg struct {
	handle notify.Handle
	text   string
}

type rowEditMsg struct {
	handle notify.Handle
	text   string
	opts   notify.Options
}

type doneMsg struct {
	err error
}
