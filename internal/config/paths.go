package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "procuptime"

// StateDir returns the directory holding the state file, PID file, logs and
// diagnostics database.
//
// Resolution order:
// 1. PROCUPTIME_HOME
// 2. %LOCALAPPDATA% on Windows, $XDG_STATE_HOME elsewhere
// 3. ~/.local/state
func StateDir() string {
	if home := os.Getenv("PROCUPTIME_HOME"); home != "" {
		return home
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDir)
		}
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return filepath.Join(xdgStateHome, appDir)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state", appDir)
	}
	return filepath.Join(os.TempDir(), appDir)
}

// DefaultConfigPath returns the default location of config.yml.
func DefaultConfigPath() string {
	if home := os.Getenv("PROCUPTIME_HOME"); home != "" {
		return filepath.Join(home, "config.yml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, "config.yml")
}

// expandPath expands a leading tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
