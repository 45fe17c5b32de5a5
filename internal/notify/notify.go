// Package notify defines the outward channels a download job talks to:
// a Notifier for editable status messages and a Deliverer for sending
// finished files inline.
package notify

import (
	"context"
	"errors"

	"mediafetch/internal/logging"
	"mediafetch/internal/model"
)

// Handle identifies a status message so later edits replace it.
type Handle string

// Options tune how an edit is rendered.
type Options struct {
	DisablePreview bool // do not expand link previews
	Rich           bool // text contains <a href> anchors
	Percent        int  // 0..100, or -1 when unknown
	Final          bool // last edit for this handle
	Failed         bool // the job did not produce a delivered or linked file
}

// Notifier is a status channel whose messages can be edited in place.
// Implementations may fail at any time; callers are expected to treat
// failures as non-fatal.
type Notifier interface {
	SendInitial(ctx context.Context, text string) (Handle, error)
	Edit(ctx context.Context, h Handle, text string, opts Options) error
}

// Meta describes an artifact handed to a Deliverer.
type Meta struct {
	Title     string
	Performer string
	Mode      model.Mode
	Size      int64
}

// Deliverer sends a finished artifact to the requester directly.
type Deliverer interface {
	SendArtifact(ctx context.Context, path string, meta Meta) error
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) SendInitial(context.Context, string) (Handle, error) { return "", nil }
func (discard) Edit(context.Context, Handle, string, Options) error { return nil }

// ErrNoDeliverer is returned by a nil Deliverer slot.
var ErrNoDeliverer = errors.New("no delivery channel configured")

// Safe wraps a Notifier so that its errors are logged at debug level and
// never returned. It also tolerates a nil inner notifier.
type Safe struct {
	Inner Notifier
}

// SendInitial returns an empty Handle when the inner notifier fails.
func (s Safe) SendInitial(ctx context.Context, text string) Handle {
	if s.Inner == nil {
		return ""
	}
	h, err := s.Inner.SendInitial(ctx, text)
	if err != nil {
		logging.FromContext(ctx).Debug("notification failed", "op", "send", "error", err)
		return ""
	}
	return h
}

func (s Safe) Edit(ctx context.Context, h Handle, text string, opts Options) {
	if s.Inner == nil {
		return
	}
	if err := s.Inner.Edit(ctx, h, text, opts); err != nil {
		logging.FromContext(ctx).Debug("notification failed", "op", "edit", "error", err)
	}
}
