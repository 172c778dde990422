package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	if path := os.Getenv("PROCUPTIME_STATE_PATH"); path != "" {
		cfg.Store.Path = path
	}

	if interval := os.Getenv("PROCUPTIME_TICK_INTERVAL"); interval != "" {
		if d, ok := parseDuration(interval); ok && d > 0 {
			if d >= cfg.Tracker.MinTickInterval && d <= cfg.Tracker.MaxTickInterval {
				cfg.Tracker.TickInterval = d
			}
		}
	}

	if timeout := os.Getenv("PROCUPTIME_SAMPLE_TIMEOUT"); timeout != "" {
		if d, ok := parseDuration(timeout); ok && d > 0 {
			cfg.Tracker.SampleTimeout = d
		}
	}

	if policy := os.Getenv("PROCUPTIME_PERSIST_FAILURE"); policy != "" {
		cfg.Tracker.PersistFailure = policy
	}

	if lower := os.Getenv("PROCUPTIME_LOWERCASE"); lower != "" {
		if val, err := strconv.ParseBool(lower); err == nil {
			cfg.Tracker.LowercaseIdentities = val
		}
	}

	if pidFile := os.Getenv("PROCUPTIME_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if enabled := os.Getenv("PROCUPTIME_DIAG_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Diagnostics.Enabled = val
		}
	}

	if path := os.Getenv("PROCUPTIME_DIAG_PATH"); path != "" {
		cfg.Diagnostics.Path = path
	}

	if cmd := os.Getenv("PROCUPTIME_VIEWER_CMD"); cmd != "" {
		cfg.Viewer.Command = cmd
	}

	if level := os.Getenv("PROCUPTIME_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if format := os.Getenv("PROCUPTIME_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}

	if file := os.Getenv("PROCUPTIME_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
}

// parseDuration accepts Go duration strings ("1500ms") or whole seconds ("2").
func parseDuration(value string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, true
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false
	}
	return d, true
}

// New creates a new Config with default values, the optional config file and
// environment overrides applied in that order.
func New(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("PROCUPTIME_CONFIG")
	}
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	if err := LoadFile(cfg, configPath); err != nil {
		return nil, err
	}

	LoadFromEnv(cfg)
	return cfg, nil
}
