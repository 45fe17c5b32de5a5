package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mediafetch"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// xdg resolves a per-user directory: $envVar/mediafetch when set on
// Linux, else ~/<linuxRel>/mediafetch on Linux, ~/Library/<darwinRel>
// on macOS, and fallback() elsewhere.
func xdg(envVar, linuxRel, darwinRel string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", darwinRel), nil
	case "linux":
		if v := os.Getenv(envVar); v != "" {
			return filepath.Join(v, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, linuxRel, appName), nil
	default:
		return fallback()
	}
}

func userConfig(sub ...string) func() (string, error) {
	return func() (string, error) {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{cfg, appName}, sub...)...), nil
	}
}

// ConfigDir holds config.{yaml,json,toml}.
// - Linux: $XDG_CONFIG_HOME/mediafetch or ~/.config/mediafetch
// - macOS: ~/Library/Application Support/mediafetch
func ConfigDir() (string, error) {
	return xdg("XDG_CONFIG_HOME", ".config", filepath.Join("Application Support", appName), userConfig())
}

// DataDir holds files delivered by local runs.
// - Linux: $XDG_DATA_HOME/mediafetch or ~/.local/share/mediafetch
// - macOS: ~/Library/Application Support/mediafetch
func DataDir() (string, error) {
	return xdg("XDG_DATA_HOME", filepath.Join(".local", "share"), filepath.Join("Application Support", appName), userConfig())
}

// StateDir holds the per-user mode store.
// - Linux: $XDG_STATE_HOME/mediafetch or ~/.local/state/mediafetch
// - macOS: ~/Library/Application Support/mediafetch/state
func StateDir() (string, error) {
	return xdg("XDG_STATE_HOME", filepath.Join(".local", "state"), filepath.Join("Application Support", appName, "state"), func() (string, error) {
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, appName, "state"), nil
		}
		return userConfig("state")()
	})
}

// DefaultModesFile is where per-user modes persist unless modes_file is set.
func DefaultModesFile() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "modes.json"), nil
}

// DefaultDeliverDir receives inline deliveries from the CLI.
func DefaultDeliverDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "delivered"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll creates the config and state dirs.
func EnsureAll() error {
	for _, f := range []func() (string, error){ConfigDir, StateDir} {
		p, err := f()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
