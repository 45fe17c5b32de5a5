package modestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"mediafetch/internal/model"
	"mediafetch/internal/util"
)

// FilePersister stores the table in a JSON or YAML file chosen by
// extension. JSON files may contain comments and trailing commas.
type FilePersister struct {
	Path string
}

func (f FilePersister) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

// Load returns an empty table when the file does not exist yet.
func (f FilePersister) Load() (map[string]model.Mode, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]model.Mode{}, nil
	}
	if err != nil {
		return nil, err
	}

	modes := map[string]model.Mode{}
	if f.isYAML() {
		err = yaml.Unmarshal(data, &modes)
	} else if len(strings.TrimSpace(string(data))) > 0 {
		err = json.Unmarshal(jsonc.ToJSON(data), &modes)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(f.Path), err)
	}
	return modes, nil
}

func (f FilePersister) Save(modes map[string]model.Mode) error {
	var (
		data []byte
		err  error
	)
	if f.isYAML() {
		data, err = yaml.Marshal(modes)
	} else {
		data, err = json.MarshalIndent(modes, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	if err := util.EnsureDir(filepath.Dir(f.Path)); err != nil {
		return err
	}
	return util.WriteFileAtomic(f.Path, data, 0o600)
}

// MemoryPersister keeps the table in memory; useful in tests and for
// one-off runs that should not touch disk.
type MemoryPersister struct {
	mu    sync.Mutex
	modes map[string]model.Mode
	Saves int
	Err   error // returned from Save when set
}

func NewMemoryPersister(initial map[string]model.Mode) *MemoryPersister {
	return &MemoryPersister{modes: maps.Clone(initial)}
}

func (m *MemoryPersister) Load() (map[string]model.Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.modes), nil
}

func (m *MemoryPersister) Save(modes map[string]model.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.modes = maps.Clone(modes)
	m.Saves++
	return nil
}
