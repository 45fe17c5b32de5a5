package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"mediafetch/internal/clock"
)

const (
	DefaultMinInterval = 2 * time.Second
	DefaultIdleEvery   = 4 * time.Second
)

// Update is an outward progress message produced by a Throttler.
// Percent is -1 for idle spinner updates.
type Update struct {
	Percent int
	Text    string
}

// Throttler turns a stream of progress observations into rate limited
// updates. The rounded percent is the dedup key: the same value is not
// re-sent within MinInterval no matter how the extra text changed.
//
// A Throttler belongs to one job. Observe and the idle ticker may run on
// different goroutines.
type Throttler struct {
	clock       clock.Clock
	emit        func(Update)
	label       string
	minInterval time.Duration
	idleEvery   time.Duration
	frames      []string

	mu       sync.Mutex
	lastSent int
	lastEdit time.Time
	spin     int
	stopped  bool // idle ticker stopped; no more spinner frames
}

// ThrottlerOption configures a Throttler.
type ThrottlerOption func(*Throttler)

func WithClock(c clock.Clock) ThrottlerOption { return func(t *Throttler) { t.clock = c } }

// WithLabel sets the text that prefixes every update, "Downloading" by default.
func WithLabel(label string) ThrottlerOption { return func(t *Throttler) { t.label = label } }

// WithMinInterval sets how long the same percent is suppressed.
// Non-positive values keep the default.
func WithMinInterval(d time.Duration) ThrottlerOption {
	return func(t *Throttler) {
		if d > 0 {
			t.minInterval = d
		}
	}
}

// WithIdleEvery sets the idle spinner period. Non-positive values keep
// the default.
func WithIdleEvery(d time.Duration) ThrottlerOption {
	return func(t *Throttler) {
		if d > 0 {
			t.idleEvery = d
		}
	}
}

// NewThrottler returns a Throttler that hands accepted updates to emit.
// emit is called without internal locks held.
func NewThrottler(emit func(Update), opts ...ThrottlerOption) *Throttler {
	t := &Throttler{
		clock:       clock.Real(),
		emit:        emit,
		label:       "Downloading",
		minInterval: DefaultMinInterval,
		idleEvery:   DefaultIdleEvery,
		frames:      spinner.MiniDot.Frames,
		lastSent:    -1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// ObserveEvent is Observe with the event's own extra text.
func (t *Throttler) ObserveEvent(ev Event) bool {
	return t.Observe(ev.Percent, ev.Extra())
}

// Observe records a percent reading and emits an update unless it
// repeats the last sent percent within the minimum interval. It reports
// whether an update was emitted.
func (t *Throttler) Observe(percent float64, extra string) bool {
	rounded := Clamp(percent)
	now := t.clock.Now()

	t.mu.Lock()
	if rounded == t.lastSent && now.Sub(t.lastEdit) < t.minInterval {
		t.mu.Unlock()
		return false
	}
	t.lastSent = rounded
	t.lastEdit = now
	t.mu.Unlock()

	text := fmt.Sprintf("%s: %d%%", t.label, rounded)
	if extra != "" {
		text += " | " + extra
	}
	t.emit(Update{Percent: rounded, Text: text})
	return true
}

// Seen reports whether any percent has been observed.
func (t *Throttler) Seen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSent >= 0
}

// StartIdle starts the liveness ticker. Until the first percent arrives,
// each tick that finds the last update older than the idle period emits
// the next spinner frame. The returned stop func is safe to call more
// than once; only the first call stops the ticker. Once stop returns no
// spinner frame is being emitted and none will be.
func (t *Throttler) StartIdle() (stop func()) {
	tk := t.clock.NewTicker(t.idleEvery)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-tk.C:
				t.idleTick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.stopped = true
			t.mu.Unlock()
			tk.Stop()
			close(done)
		})
		<-exited
	}
}

func (t *Throttler) idleTick() {
	now := t.clock.Now()

	t.mu.Lock()
	if t.stopped || t.lastSent >= 0 || now.Sub(t.lastEdit) <= t.idleEvery {
		t.mu.Unlock()
		return
	}
	t.spin = (t.spin + 1) % len(t.frames)
	frame := t.frames[t.spin]
	t.lastEdit = now
	t.mu.Unlock()

	t.emit(Update{Percent: -1, Text: fmt.Sprintf("%s... %s (preparing, waiting for progress)", t.label, frame)})
}
