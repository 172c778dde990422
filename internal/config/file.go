package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML file at path onto cfg. A missing file is not an error.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Daemon.PIDFile = expandPath(cfg.Daemon.PIDFile)
	cfg.Diagnostics.Path = expandPath(cfg.Diagnostics.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	return nil
}
