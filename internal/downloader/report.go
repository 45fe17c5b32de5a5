package downloader

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"mediafetch/internal/model"
	"mediafetch/internal/notify"
	"mediafetch/internal/util"
	"mediafetch/internal/util/format"
	"mediafetch/internal/util/media"
)

func label(m model.Mode) string {
	if m == model.ModeAudio {
		return "Downloading audio"
	}
	return "Downloading"
}

func initialText(m model.Mode) string {
	return fmt.Sprintf("Downloading %s in best quality... ⏳", m)
}

// failureText composes the message for a non-zero exit. Tail lines have
// the download directory stripped so only base names are shown.
func failureText(code int, tailLines []string, dir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Download failed (exit code %d).", code)
	if code == failureHintCode {
		b.WriteString(failureHint)
	}
	if len(tailLines) > 0 {
		b.WriteString("\n\nLog:\n")
		b.WriteString(stripDir(strings.Join(tailLines, "\n"), dir))
	}
	return b.String()
}

func stripDir(s, dir string) string {
	if dir == "" {
		return s
	}
	sep := string(filepath.Separator)
	clean := filepath.Clean(dir)
	prefixes := []string{clean + sep}
	// The absolute form goes first: it contains the relative one.
	if abs, err := filepath.Abs(clean); err == nil && abs != clean {
		prefixes = append([]string{abs + sep}, prefixes...)
	}
	for _, p := range prefixes {
		s = strings.ReplaceAll(s, p, "")
	}
	return s
}

// report delivers or links a resolved artifact and records the result in
// out. Any error, including a panic in a collaborator, is returned so the
// caller can send a final error message instead.
func (j *job) report(ctx context.Context, out *model.Outcome) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	art := out.Artifact
	size := format.MB(art.Size)

	if art.Size >= j.opts.InlineMaxBytes {
		return j.reportLinks(ctx, out, fmt.Sprintf("Done! Downloaded (%s). Too large to send to the chat.", size))
	}

	j.note.Edit(ctx, j.msg, fmt.Sprintf("Done! Downloaded (%s). Sending...", size), notify.Options{Percent: 100})
	derr := j.deliver(ctx, art)
	if derr != nil {
		j.log.Warn("delivery failed", "name", art.Name, "error", derr)
		out.DeliveryErr = fmt.Errorf("%w: %w", model.ErrDelivery, derr)
		return j.reportLinks(ctx, out, fmt.Sprintf("Done! Downloaded (%s). Could not send it to the chat.", size))
	}

	out.Delivered = true
	if err := util.RemoveIfExists(art.Path); err != nil {
		j.log.Warn("could not remove delivered file", "name", art.Name, "error", err)
		j.note.Edit(ctx, j.msg, "Sent! The file is still kept on the server.", notify.Options{Percent: 100, Final: true})
		return nil
	}
	out.Removed = true
	j.log.Info("delivered and removed", "name", art.Name)
	j.note.Edit(ctx, j.msg, fmt.Sprintf("Sent and removed from the server! (%s)", art.Name), notify.Options{Percent: 100, Final: true})
	return nil
}

func (j *job) deliver(ctx context.Context, art *model.Artifact) error {
	if j.opts.Deliverer == nil {
		return notify.ErrNoDeliverer
	}
	platform := util.PlatformOther
	if u, err := util.ValidateURL(j.req.URL); err == nil {
		platform = util.DetectPlatform(u)
	}
	return j.opts.Deliverer.SendArtifact(ctx, art.Path, notify.Meta{
		Title:     media.Title(art.Name),
		Performer: media.Performer(platform, j.req.Mode),
		Mode:      j.req.Mode,
		Size:      art.Size,
	})
}

func (j *job) reportLinks(ctx context.Context, out *model.Outcome, headline string) error {
	if j.opts.Links == nil {
		return errors.New("no public URL configured for links")
	}
	// The file may have been swept or removed since it was resolved.
	if _, err := os.Stat(out.Artifact.Path); err != nil {
		return fmt.Errorf("%s: %w", out.Artifact.Name, pathCause(err))
	}

	links := j.opts.Links(out.Artifact.Name)
	out.Links = &links

	view := "Watch video"
	if j.req.Mode == model.ModeAudio {
		view = "Listen to audio"
	}
	esc := html.EscapeString
	text := fmt.Sprintf("%s\n\n👁️ <a href=\"%s\">%s</a>\n📥 <a href=\"%s\">Download file</a>\n📋 <a href=\"%s\">All files</a>",
		esc(headline), esc(links.View), view, esc(links.Download), esc(links.Listing))
	j.note.Edit(ctx, j.msg, text, notify.Options{Rich: true, DisablePreview: true, Percent: 100, Final: true})
	return nil
}

// pathCause drops the operation and path from a *fs.PathError so
// messages only name the artifact. Other errors are returned as is.
func pathCause(err error) error {
	if cause := errors.Unwrap(err); cause != nil {
		return cause
	}
	return err
}
