package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the format and quality arguments passed to the downloader.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// DefaultMode is used when neither the caller nor the mode store picked one.
const DefaultMode = ModeVideo

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAudio || m == ModeVideo
}

// ParseMode normalizes and validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (valid: audio|video)", ErrInvalidMode, s)
	}
	return m, nil
}

// State is the lifecycle position of a job.
type State string

const (
	StateStarting  State = "starting"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCrashed   State = "crashed"
)

// IsTerminal returns true once the job can no longer change state.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCrashed
}

// Request is a single URL submission from a caller.
type Request struct {
	URL    string
	Mode   Mode
	UserID string // Caller identity, part of the naming prefix
	ChatID string // Conversation identity, part of the naming prefix
}

// Artifact is a completed file in the shared download directory.
type Artifact struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Links are the retrieval URLs reported for artifacts kept on disk.
type Links struct {
	View     string
	Download string
	Listing  string
}

// Outcome is the terminal result of one job.
type Outcome struct {
	JobID    string
	State    State
	ExitCode int // -1 when the process never ran or was killed by a signal
	Artifact *Artifact

	Delivered   bool   // Sent inline through the delivery channel
	Removed     bool   // Deleted from disk after delivery
	DeliveryErr error  // Inline delivery was attempted and failed; links were reported instead
	Links       *Links // Set when the artifact stays on disk

	Err error // nil on success; wraps one of the sentinel errors otherwise
}
