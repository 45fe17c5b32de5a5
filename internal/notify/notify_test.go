package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

type failing struct{}

func (failing) SendInitial(context.Context, string) (Handle, error) { return "", errors.New("gone") }
func (failing) Edit(context.Context, Handle, string, Options) error { return errors.New("gone") }

func TestSafe_SwallowsErrors(t *testing.T) {
	ctx := context.Background()
	s := Safe{Inner: failing{}}
	be.Equal(t, s.SendInitial(ctx, "x"), Handle(""))
	s.Edit(ctx, "h", "y", Options{})

	var nilSafe Safe
	be.Equal(t, nilSafe.SendInitial(ctx, "x"), Handle(""))
	nilSafe.Edit(ctx, "h", "y", Options{})
}

func TestWriter_RendersLinks(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ctx := context.Background()

	h, err := w.SendInitial(ctx, "Starting")
	be.Equal(t, err, nil)
	err = w.Edit(ctx, h, `Done.`+"\n"+`<a href="http://x/y%20z">Download file</a>`, Options{Rich: true, Percent: -1})
	be.Equal(t, err, nil)

	out := buf.String()
	be.Equal(t, strings.Contains(out, "["+string(h)+"] Starting\n"), true)
	be.Equal(t, strings.Contains(out, "["+string(h)+"] Download file: http://x/y%20z\n"), true)
}

func TestPlainLinks_DecodesEntities(t *testing.T) {
	got := PlainLinks(`Tom &amp; Jerry` + "\n" + `<a href="http://x/a%20&amp;%20b?x=1&amp;y=2">Download file</a>`)
	be.Equal(t, got, "Tom & Jerry\nDownload file: http://x/a%20&%20b?x=1&y=2")
}

func TestWriter_QuietSkipsProgress(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Quiet = true
	be.Equal(t, w.Edit(context.Background(), "h", "Downloading: 5%", Options{Percent: 5}), nil)
	be.Equal(t, buf.Len(), 0)
	be.Equal(t, w.Edit(context.Background(), "h", "Downloading... ⠋", Options{Percent: -1}), nil)
	be.Equal(t, buf.Len(), 0)
	be.Equal(t, w.Edit(context.Background(), "h", "failed", Options{Percent: -1, Final: true, Failed: true}), nil)
	be.Equal(t, buf.String(), "[h] failed\n")
}

func TestDirDeliverer(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	be.Equal(t, os.WriteFile(src, []byte("data"), 0o644), nil)

	out := filepath.Join(t.TempDir(), "inbox")
	d := DirDeliverer{Dir: out}
	be.Equal(t, d.SendArtifact(context.Background(), src, Meta{Title: "clip"}), nil)

	got, err := os.ReadFile(filepath.Join(out, "clip.mp4"))
	be.Equal(t, err, nil)
	be.Equal(t, string(got), "data")

	be.Equal(t, errors.Is(DirDeliverer{}.SendArtifact(context.Background(), src, Meta{}), ErrNoDeliverer), true)
}
