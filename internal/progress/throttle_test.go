package progress

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"mediafetch/internal/clock"
)

type recorder struct {
	mu      sync.Mutex
	updates []Update
	got     chan Update
}

func newRecorder() *recorder { return &recorder{got: make(chan Update, 16)} }

func (r *recorder) emit(u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
	r.got <- u
}

func (r *recorder) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestThrottler_DedupsByRoundedPercent(t *testing.T) {
	clk := clock.Fake(t0)
	rec := newRecorder()
	th := NewThrottler(rec.emit, WithClock(clk))

	for _, p := range []float64{10, 10, 11, 11, 12} {
		th.Observe(p, "")
		clk.Advance(300 * time.Millisecond)
	}

	got := rec.all()
	be.Equal(t, len(got), 3)
	be.Equal(t, got[0].Percent, 10)
	be.Equal(t, got[1].Percent, 11)
	be.Equal(t, got[2].Percent, 12)
	be.Equal(t, got[2].Text, "Downloading: 12%")
}

func TestThrottler_SamePercentAfterInterval(t *testing.T) {
	clk := clock.Fake(t0)
	rec := newRecorder()
	th := NewThrottler(rec.emit, WithClock(clk), WithLabel("Downloading audio"))

	be.Equal(t, th.Observe(50.2, "a"), true)
	clk.Advance(time.Second)
	be.Equal(t, th.Observe(50.7, "different extra"), false)
	clk.Advance(time.Second)
	be.Equal(t, th.Observe(50.9, "b"), true)

	got := rec.all()
	be.Equal(t, len(got), 2)
	be.Equal(t, got[1].Text, "Downloading audio: 50% | b")
}

func TestThrottler_ClampsForDisplay(t *testing.T) {
	rec := newRecorder()
	th := NewThrottler(rec.emit, WithClock(clock.Fake(t0)))
	th.Observe(250, "")
	th.Observe(-4, "")

	got := rec.all()
	be.Equal(t, got[0].Percent, 100)
	be.Equal(t, got[1].Percent, 0)
}

func TestThrottler_IdleSpinner(t *testing.T) {
	clk := clock.Fake(t0)
	rec := newRecorder()
	th := NewThrottler(rec.emit, WithClock(clk))
	stop := th.StartIdle()
	defer stop()

	clk.WaitForTimers(1)
	clk.Advance(DefaultIdleEvery)
	u := <-rec.got
	be.Equal(t, u.Percent, -1)
	be.Equal(t, strings.Contains(u.Text, "⠙"), true)

	// The last update is exactly one period old, not older.
	clk.Advance(DefaultIdleEvery)
	clk.Advance(DefaultIdleEvery)
	u = <-rec.got
	be.Equal(t, strings.Contains(u.Text, "⠹"), true)

	// Once a percent is known the spinner stays quiet.
	th.Observe(1, "")
	<-rec.got
	clk.Advance(10 * DefaultIdleEvery)
	stop()
	be.Equal(t, th.Seen(), true)
	for _, u := range rec.all()[3:] {
		t.Errorf("unexpected update after progress: %+v", u)
	}
}

func TestThrottler_StopIsIdempotent(t *testing.T) {
	clk := clock.Fake(t0)
	th := NewThrottler(func(Update) {}, WithClock(clk))
	stop := th.StartIdle()
	stop()
	stop()
	be.Equal(t, clk.Stopped(), 1)
	be.Equal(t, clk.Pending(), 0)
}

func TestThrottler_StopWaitsForSpinnerFrame(t *testing.T) {
	clk := clock.Fake(t0)
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	emitted := false
	th := NewThrottler(func(Update) {
		close(entered)
		<-release
		mu.Lock()
		emitted = true
		mu.Unlock()
	}, WithClock(clk))
	stop := th.StartIdle()

	clk.WaitForTimers(1)
	clk.Advance(DefaultIdleEvery)
	<-entered

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a spinner frame was being emitted")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-stopped
	mu.Lock()
	defer mu.Unlock()
	be.Equal(t, emitted, true)
}

func TestThrottler_CustomIntervals(t *testing.T) {
	clk := clock.Fake(t0)
	rec := newRecorder()
	th := NewThrottler(rec.emit, WithClock(clk),
		WithMinInterval(500*time.Millisecond), WithIdleEvery(time.Second))

	be.Equal(t, th.Observe(5, ""), true)
	clk.Advance(600 * time.Millisecond)
	be.Equal(t, th.Observe(5, ""), true)

	idle := NewThrottler(rec.emit, WithClock(clk), WithIdleEvery(time.Second), WithMinInterval(0))
	stop := idle.StartIdle()
	defer stop()
	clk.WaitForTimers(1)
	clk.Advance(time.Second)
	clk.Advance(time.Second)
	u := <-rec.got
	for u.Percent != -1 {
		u = <-rec.got
	}
	be.Equal(t, u.Percent, -1)
}
