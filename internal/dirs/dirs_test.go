package dirs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestLinuxXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(base, "cfg", "mediafetch")},
		{"state", StateDir, filepath.Join(base, "state", "mediafetch")},
		{"modes file", DefaultModesFile, filepath.Join(base, "state", "mediafetch", "modes.json")},
		{"deliver dir", DefaultDeliverDir, filepath.Join(base, "data", "mediafetch", "delivered")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if err := EnsureAll(); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}
}
