// Package launcher spawns the stats viewer as a detached child process.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/procuptime/procuptime/internal/logging"
	"github.com/sirupsen/logrus"
)

// Launcher starts a fixed command line each time Launch is called.
type Launcher struct {
	command []string
	logger  *logrus.Entry
}

// New creates a Launcher for command, where command[0] is the program.
func New(command []string) *Launcher {
	return &Launcher{
		command: command,
		logger:  logging.NewLogger("launcher"),
	}
}

// FromConfig builds a Launcher from a configured command line. An empty
// line falls back to DefaultCommand.
func FromConfig(commandLine string) (*Launcher, error) {
	if fields := strings.Fields(commandLine); len(fields) > 0 {
		return New(fields), nil
	}
	cmd, err := DefaultCommand()
	if err != nil {
		return nil, err
	}
	return New(cmd), nil
}

// DefaultCommand runs this executable's HTML viewer.
func DefaultCommand() ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return []string{exe, "view", "--html"}, nil
}

// Command returns the command line being launched.
func (l *Launcher) Command() []string {
	return append([]string(nil), l.command...)
}

// Launch starts the command and returns once it is running. The child is
// reaped in the background.
func (l *Launcher) Launch() error {
	if len(l.command) == 0 {
		return fmt.Errorf("no viewer command configured")
	}

	cmd := exec.Command(l.command[0], l.command[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start viewer %s: %w", l.command[0], err)
	}

	l.logger.WithField("pid", cmd.Process.Pid).Debugf("Viewer started: %s", strings.Join(l.command, " "))

	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.WithError(err).Debug("Viewer exited with error")
		}
	}()
	return nil
}
