// Package modestore remembers which download mode each user picked.
package modestore

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"mediafetch/internal/logging"
	"mediafetch/internal/model"
)

// Persister loads and saves the whole user→mode table.
type Persister interface {
	Load() (map[string]model.Mode, error)
	Save(map[string]model.Mode) error
}

// Store is a concurrency-safe user→mode table that writes through to its
// Persister on every change.
type Store struct {
	mu    sync.RWMutex
	modes map[string]model.Mode
	p     Persister
}

// Open loads the table from p. Unknown modes in the persisted data are
// dropped with a warning rather than failing the load.
func Open(ctx context.Context, p Persister) (*Store, error) {
	raw, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load modes: %w", err)
	}
	modes := make(map[string]model.Mode, len(raw))
	for user, m := range raw {
		if !m.Valid() {
			logging.FromContext(ctx).Warn("ignoring unknown mode", "user", user, "mode", m)
			continue
		}
		modes[user] = m
	}
	return &Store{modes: modes, p: p}, nil
}

// Get returns the user's mode, or model.DefaultMode when unset.
func (s *Store) Get(user string) model.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.modes[user]; ok {
		return m
	}
	return model.DefaultMode
}

// Set records the user's mode and persists the table. The in-memory value
// is kept even if persisting fails; the error is returned.
func (s *Store) Set(user string, m model.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidMode, m)
	}
	s.mu.Lock()
	s.modes[user] = m
	snapshot := maps.Clone(s.modes)
	s.mu.Unlock()

	if err := s.p.Save(snapshot); err != nil {
		return fmt.Errorf("save modes: %w", err)
	}
	return nil
}

// All returns a copy of the table.
func (s *Store) All() map[string]model.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.modes)
}
