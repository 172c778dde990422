package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Persistence failure policies for the tracker.
const (
	PersistFatal = "fatal"
	PersistRetry = "retry"
)

// Config holds all application configuration
type Config struct {
	// State file configuration
	Store StoreConfig `yaml:"store"`

	// Tracker configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Diagnostics error log configuration
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Viewer configuration
	Viewer ViewerConfig `yaml:"viewer"`

	// Log configuration
	Log LogConfig `yaml:"log"`
}

// StoreConfig holds state file configuration
type StoreConfig struct {
	Path string `yaml:"path"` // JSON file holding cumulative uptimes
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	TickInterval        time.Duration `yaml:"tick_interval"`        // How often the focused window is sampled
	MinTickInterval     time.Duration `yaml:"-"`                    // Minimum allowed tick interval
	MaxTickInterval     time.Duration `yaml:"-"`                    // Maximum allowed tick interval
	SampleTimeout       time.Duration `yaml:"sample_timeout"`       // Upper bound for one focus query
	PersistFailure      string        `yaml:"persist_failure"`      // "fatal" or "retry"
	LowercaseIdentities bool          `yaml:"lowercase_identities"` // Fold identities to lower case
}

// DaemonConfig holds single-instance configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"`
}

// DiagnosticsConfig holds the SQLite error log configuration
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ViewerConfig holds viewer launch configuration
type ViewerConfig struct {
	// Command launched by "Open Stats". Empty means the running executable with "view --html".
	Command string `yaml:"command"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	stateDir := StateDir()

	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(stateDir, "processes_uptime.json"),
		},
		Tracker: TrackerConfig{
			TickInterval:    1 * time.Second,
			MinTickInterval: 1 * time.Second,
			MaxTickInterval: 60 * time.Second,
			SampleTimeout:   500 * time.Millisecond,
			PersistFailure:  PersistFatal,
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(stateDir, fmt.Sprintf("procuptime-%d.pid", os.Getuid())),
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: true,
			Path:    filepath.Join(stateDir, "diagnostics.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(stateDir, "procuptime.log"),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("state file path cannot be empty")
	}

	if c.Tracker.TickInterval < c.Tracker.MinTickInterval {
		return fmt.Errorf("tick interval (%v) cannot be less than minimum (%v)",
			c.Tracker.TickInterval, c.Tracker.MinTickInterval)
	}

	if c.Tracker.TickInterval > c.Tracker.MaxTickInterval {
		return fmt.Errorf("tick interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.TickInterval, c.Tracker.MaxTickInterval)
	}

	if c.Tracker.SampleTimeout <= 0 {
		return fmt.Errorf("sample timeout must be positive")
	}

	if c.Tracker.SampleTimeout > c.Tracker.TickInterval {
		return fmt.Errorf("sample timeout (%v) cannot exceed tick interval (%v)",
			c.Tracker.SampleTimeout, c.Tracker.TickInterval)
	}

	switch c.Tracker.PersistFailure {
	case PersistFatal, PersistRetry:
	default:
		return fmt.Errorf("persist failure policy must be %q or %q, got %q",
			PersistFatal, PersistRetry, c.Tracker.PersistFailure)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Diagnostics.Enabled && c.Diagnostics.Path == "" {
		return fmt.Errorf("diagnostics database path cannot be empty when diagnostics are enabled")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// SetTickInterval sets the tick interval with validation
func (c *Config) SetTickInterval(interval time.Duration) error {
	if interval < c.Tracker.MinTickInterval {
		return fmt.Errorf("tick interval cannot be less than %v", c.Tracker.MinTickInterval)
	}
	if interval > c.Tracker.MaxTickInterval {
		return fmt.Errorf("tick interval cannot be greater than %v", c.Tracker.MaxTickInterval)
	}
	c.Tracker.TickInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	viewer := c.Viewer.Command
	if viewer == "" {
		viewer = "(self) view --html"
	}

	return fmt.Sprintf(`Configuration:
  Store:
    Path: %s
  Tracker:
    Tick Interval: %v
    Sample Timeout: %v
    Persist Failure: %s
    Lowercase Identities: %v
  Daemon:
    PID File: %s
  Diagnostics:
    Enabled: %v
    Path: %s
  Viewer:
    Command: %s
  Log:
    Level: %s
    Format: %s
    File: %s`,
		c.Store.Path,
		c.Tracker.TickInterval,
		c.Tracker.SampleTimeout,
		c.Tracker.PersistFailure,
		c.Tracker.LowercaseIdentities,
		c.Daemon.PIDFile,
		c.Diagnostics.Enabled,
		c.Diagnostics.Path,
		viewer,
		c.Log.Level,
		c.Log.Format,
		c.Log.File,
	)
}
