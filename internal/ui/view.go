package ui

import (
	"fmt"
	"strings"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.order)
	for _, h := range m.order {
		if m.rows[h].final {
			done++
		}
	}
	title := m.styles.Title.Render(m.title)
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Jobs: %d/%d done • q: quit", done, total))
	return title + "\n" + sub
}

func (m Model) viewRows() string {
	var b strings.Builder
	for _, h := range m.order {
		b.WriteString(m.viewRow(m.rows[h]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewRow(r *row) string {
	var status string
	switch {
	case r.final && r.failed:
		status = m.styles.Error.Render("✗ failed")
	case r.final:
		status = m.styles.Success.Render("✓ done")
	case r.percent >= 0 && r.percent <= 100:
		status = fmt.Sprintf("%s %3d%%", r.bar.ViewAs(float64(r.percent)/100.0), r.percent)
	default:
		status = m.styles.Spinner.Render(r.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	textStyle := m.styles.RowText
	if r.final && r.failed {
		textStyle = m.styles.Error
	} else if strings.Contains(r.text, "Post-processing") || strings.Contains(r.text, "post-processing") {
		textStyle = m.styles.StagePost
	} else if !r.final {
		textStyle = m.styles.StageDL
	}
	text := r.text
	if m.width > 4 {
		text = wrapLines(text, m.width-4)
	}
	return m.styles.Box.Render(fmt.Sprintf("[%s] %s\n%s", r.handle, status, textStyle.Render(text)))
}

// wrapLines truncates each line of s to n runes.
func wrapLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = truncate(l, n)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
