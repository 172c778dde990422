// Package logging configures the process-wide logrus logger and hands out
// per-component entries.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/procuptime/procuptime/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	base      = logrus.New()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	logFile   *os.File
)

// NewLogger returns the logger for a specific component.
// Entries are cached per component and share the base logger's configuration.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := base.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies cfg to the base logger. When toFile is set the log file
// sink is opened in addition to stderr; stderr is only kept when it is a
// terminal or debug logging is on, since the tray process usually has no
// console attached.
func Configure(cfg config.LogConfig, toFile bool) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch cfg.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var writers []io.Writer

	if toFile && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return err
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = file
		writers = append(writers, file)
	}

	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if !toFile || isInteractive || level >= logrus.DebugLevel {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}

	return nil
}

// SetOutput redirects the base logger, mostly for tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Close releases the log file sink, if any.
func Close() error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	base.SetOutput(os.Stderr)
	return err
}
