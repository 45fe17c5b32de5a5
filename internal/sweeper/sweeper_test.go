package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"mediafetch/internal/clock"
)

const day = 24 * time.Hour

func writeAged(t *testing.T, dir, name string, size int, now time.Time, age time.Duration) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	mt := now.Add(-age)
	if err := os.Chtimes(p, mt, mt); err != nil {
		t.Fatal(err)
	}
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func TestSweep_DeletesAgedFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeAged(t, dir, "old.mp4", 100, now, 8*day)
	writeAged(t, dir, "old.mp3", 20, now, 30*day)
	writeAged(t, dir, "fresh.mp4", 10, now, day)
	writeAged(t, dir, "stale.mp4.part", 50, now, 90*day)
	be.Equal(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755), nil)
	old := now.Add(-90 * day)
	be.Equal(t, os.Chtimes(filepath.Join(dir, "subdir"), old, old), nil)

	s := New(dir, 7*day, day, time.Minute)
	s.Clock = clock.Fake(now)
	res := s.Sweep(context.Background())

	be.Equal(t, res.Deleted, 2)
	be.Equal(t, res.BytesFreed, int64(120))
	be.Equal(t, res.Skipped, false)
	be.Equal(t, exists(filepath.Join(dir, "old.mp4")), false)
	be.Equal(t, exists(filepath.Join(dir, "fresh.mp4")), true)
	be.Equal(t, exists(filepath.Join(dir, "stale.mp4.part")), true)
	be.Equal(t, exists(filepath.Join(dir, "subdir")), true)
}

func TestSweep_MissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none"), day, day, 0)
	be.Equal(t, s.Sweep(context.Background()), Result{})
	st, err := s.Stats(context.Background())
	be.Equal(t, err, nil)
	be.Equal(t, st, Stats{})
}

func TestSweep_ConcurrentCallIsNoop(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeAged(t, dir, "old.mp4", 1, now, 8*day)

	s := New(dir, 7*day, day, 0)
	s.Clock = clock.Fake(now)

	// Hold the guard as an in-flight sweep would.
	be.Equal(t, s.running.CompareAndSwap(false, true), true)
	res := s.Sweep(context.Background())
	be.Equal(t, res, Result{Skipped: true})
	be.Equal(t, exists(filepath.Join(dir, "old.mp4")), true)
	s.running.Store(false)

	be.Equal(t, s.Sweep(context.Background()).Deleted, 1)
}

func TestSweep_ParallelCallersDeleteOnce(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	for _, n := range []string{"a", "b", "c", "d"} {
		writeAged(t, dir, n, 10, now, 10*day)
	}
	s := New(dir, 7*day, day, 0)
	s.Clock = clock.Fake(now)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.Sweep(context.Background())
			mu.Lock()
			deleted += r.Deleted
			mu.Unlock()
		}()
	}
	wg.Wait()
	be.Equal(t, deleted, 4)
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeAged(t, dir, "old.mp4", 100, now, 8*day)
	writeAged(t, dir, "new.mp4", 5, now, 0)
	writeAged(t, dir, "x.part", 1000, now, 8*day)

	s := New(dir, 7*day, day, 0)
	s.Clock = clock.Fake(now)
	st, err := s.Stats(context.Background())
	be.Equal(t, err, nil)
	be.Equal(t, st, Stats{Count: 3, TotalBytes: 105, Aged: 1})
}

func TestRun_InitialDelayThenInterval(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()
	clk := clock.Fake(start)

	s := New(dir, day, time.Hour, time.Minute)
	s.Clock = clk

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	clk.WaitForTimers(2)

	// A file that only becomes old enough after the first periodic tick.
	writeAged(t, dir, "a.mp4", 1, start, day-30*time.Minute)

	clk.Advance(time.Minute)
	waitFor(t, func() bool { return !s.running.Load() })
	be.Equal(t, exists(filepath.Join(dir, "a.mp4")), true)

	clk.Advance(time.Hour)
	waitFor(t, func() bool { return !exists(filepath.Join(dir, "a.mp4")) })

	cancel()
	<-done
	be.Equal(t, clk.Pending(), 0)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
