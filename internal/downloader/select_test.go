package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediafetch/internal/model"
)

// touch creates name in dir with the given age relative to base.
func touch(t *testing.T, dir, name string, base time.Time, age time.Duration) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	mt := base.Add(-age)
	if err := os.Chtimes(p, mt, mt); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewest(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		files    map[string]time.Duration // name -> age
		dirs     []string
		wantFile string
		wantErr  error
	}{
		{
			name:     "newest complete file wins",
			files:    map[string]time.Duration{"old.mp4": time.Hour, "new.mp4": time.Minute, "mid.mp3": 10 * time.Minute},
			wantFile: "new.mp4",
		},
		{
			name:     "partial files are invisible",
			files:    map[string]time.Duration{"done.mp4": time.Hour, "fresh.mp4.part": time.Second},
			wantFile: "done.mp4",
		},
		{
			name:     "directories are ignored",
			files:    map[string]time.Duration{"a.webm": time.Hour},
			dirs:     []string{"sub"},
			wantFile: "a.webm",
		},
		{
			name:    "only partial files",
			files:   map[string]time.Duration{"x.part": 0},
			wantErr: model.ErrArtifactNotFound,
		},
		{
			name:    "empty directory",
			wantErr: model.ErrArtifactNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, age := range tt.files {
				touch(t, dir, name, now, age)
			}
			for _, d := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
					t.Fatal(err)
				}
			}

			got, err := Newest(context.Background(), dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Newest() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Newest() unexpected error: %v", err)
			}
			if got.Name != tt.wantFile {
				t.Errorf("Newest() = %q, want %q", got.Name, tt.wantFile)
			}
			if got.Path != filepath.Join(dir, tt.wantFile) {
				t.Errorf("Newest() Path = %q", got.Path)
			}
		})
	}
}

func TestNewest_MissingDir(t *testing.T) {
	_, err := Newest(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, model.ErrArtifactNotFound) {
		t.Errorf("Newest() error = %v, want ErrArtifactNotFound", err)
	}
}

func TestResolve_PrefersCapturedPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	printed := touch(t, dir, "printed.mp3", now, time.Hour)
	touch(t, dir, "newer.mp3", now, 0)

	got, err := Resolve(context.Background(), printed, dir)
	if err != nil || got.Name != "printed.mp3" {
		t.Errorf("Resolve() = %q, %v; want printed.mp3", got.Name, err)
	}

	// A captured path that vanished falls back to the directory scan.
	if err := os.Remove(printed); err != nil {
		t.Fatal(err)
	}
	got, err = Resolve(context.Background(), printed, dir)
	if err != nil || got.Name != "newer.mp3" {
		t.Errorf("Resolve() = %q, %v; want newer.mp3", got.Name, err)
	}
}
