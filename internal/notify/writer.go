package notify

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Writer is a Notifier for plain terminals and log files: every edit is
// printed as a new line tagged with the message handle.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	// Only initial and final messages are written when Quiet is set.
	Quiet bool
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) SendInitial(_ context.Context, text string) (Handle, error) {
	h := Handle(uuid.NewString()[:8])
	return h, w.write(h, text)
}

func (w *Writer) Edit(_ context.Context, h Handle, text string, opts Options) error {
	if w.Quiet && !opts.Final {
		return nil
	}
	if opts.Rich {
		text = PlainLinks(text)
	}
	return w.write(h, text)
}

func (w *Writer) write(h Handle, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(w.out, "[%s] %s\n", h, line); err != nil {
			return err
		}
	}
	return nil
}

var anchorRe = regexp.MustCompile(`<a href="([^"]*)">([^<]*)</a>`)

// PlainLinks rewrites <a href="url">label</a> anchors as "label: url"
// and decodes HTML entities in the result.
func PlainLinks(text string) string {
	return html.UnescapeString(anchorRe.ReplaceAllString(text, "$2: $1"))
}
