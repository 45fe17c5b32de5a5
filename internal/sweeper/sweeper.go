// Package sweeper deletes aged artifacts from the shared download
// directory on a timer and reports directory statistics.
package sweeper

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"mediafetch/internal/clock"
	"mediafetch/internal/logging"
	"mediafetch/internal/util"
	"mediafetch/internal/util/format"
)

// Result summarizes one sweep.
type Result struct {
	Deleted    int   `json:"deleted" yaml:"deleted"`
	BytesFreed int64 `json:"bytes_freed" yaml:"bytes_freed"`
	Errors     int   `json:"errors" yaml:"errors"`
	// Skipped is set when another sweep was already running.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// Stats describes the directory. Count includes every entry; TotalBytes
// and Aged only consider complete files.
type Stats struct {
	Count      int   `json:"count" yaml:"count"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
	Aged       int   `json:"aged" yaml:"aged"`
}

// Sweeper removes files older than MaxAge from Dir. Sweeps never overlap:
// a sweep requested while one is running returns immediately.
type Sweeper struct {
	Dir          string
	MaxAge       time.Duration
	Interval     time.Duration
	InitialDelay time.Duration
	Clock        clock.Clock

	running atomic.Bool
}

func New(dir string, maxAge, interval, initialDelay time.Duration) *Sweeper {
	return &Sweeper{
		Dir:          dir,
		MaxAge:       maxAge,
		Interval:     interval,
		InitialDelay: initialDelay,
		Clock:        clock.Real(),
	}
}

func (s *Sweeper) clock() clock.Clock {
	if s.Clock == nil {
		return clock.Real()
	}
	return s.Clock
}

// eligible reports whether a directory entry is a complete artifact.
func eligible(e fs.DirEntry) bool {
	return !e.IsDir() && !util.IsPartial(e.Name())
}

// Sweep deletes every complete file whose modification time is older than
// MaxAge. Errors on single entries are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) Result {
	log := logging.FromContext(ctx).With("dir", s.Dir)
	if !s.running.CompareAndSwap(false, true) {
		log.Info("sweep already running, skipping")
		return Result{Skipped: true}
	}
	defer s.running.Store(false)

	start := s.clock().Now()
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("download dir does not exist, nothing to sweep")
		return Result{}
	}
	if err != nil {
		log.Error("sweep failed", "error", err)
		return Result{Errors: 1}
	}

	var res Result
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if !eligible(e) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("skip entry", "name", e.Name(), "error", err)
				res.Errors++
			}
			continue
		}
		age := start.Sub(fi.ModTime())
		if age <= s.MaxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("delete failed", "name", e.Name(), "error", err)
				res.Errors++
			}
			continue
		}
		res.Deleted++
		res.BytesFreed += fi.Size()
		log.Info("deleted", "name", e.Name(), "size", format.HumanizeBytes(fi.Size()), "age", format.Age(age))
	}

	log.Info("sweep finished",
		"deleted", res.Deleted,
		"freed", format.HumanizeBytes(res.BytesFreed),
		"errors", res.Errors,
		"took", s.clock().Now().Sub(start))
	return res
}

// Stats scans the directory without changing it. A missing directory
// reports zeros.
func (s *Sweeper) Stats(ctx context.Context) (Stats, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, err
	}

	now := s.clock().Now()
	st := Stats{Count: len(entries)}
	for _, e := range entries {
		if !eligible(e) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			logging.FromContext(ctx).Debug("stat failed", "name", e.Name(), "error", err)
			continue
		}
		st.TotalBytes += fi.Size()
		if now.Sub(fi.ModTime()) > s.MaxAge {
			st.Aged++
		}
	}
	return st, nil
}

// Run sweeps once after InitialDelay and then every Interval until ctx is
// done.
func (s *Sweeper) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("sweeper started", "interval", s.Interval, "max_age", s.MaxAge, "dir", s.Dir)
	defer log.Info("sweeper stopped")

	first := make(chan struct{})
	t := s.clock().AfterFunc(s.InitialDelay, func() { close(first) })
	defer t.Stop()

	tk := s.clock().NewTicker(s.Interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-first:
			first = nil
			s.Sweep(ctx)
		case <-tk.C:
			s.Sweep(ctx)
		}
	}
}
