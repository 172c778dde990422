// Package darwin asks System Events for the frontmost application on macOS.
package darwin

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/procuptime/procuptime/pkg/window"
)

const frontmostScript = `tell application "System Events" to get {name, unix id} of first application process whose frontmost is true`

// Detector implements window.Detector through osascript.
type Detector struct {
	hasOsascript bool
}

// NewDetector creates a new macOS detector
func NewDetector() *Detector {
	_, err := exec.LookPath("osascript")
	return &Detector{hasOsascript: err == nil}
}

// IsAvailable checks that we run on macOS with osascript present
func (d *Detector) IsAvailable() bool {
	return runtime.GOOS == "darwin" && d.hasOsascript
}

// GetDisplayServer returns "darwin"
func (d *Detector) GetDisplayServer() string {
	return "darwin"
}

// GetFocusedWindow returns the frontmost application process
func (d *Detector) GetFocusedWindow(ctx context.Context) (*window.WindowInfo, error) {
	output, err := exec.CommandContext(ctx, "osascript", "-e", frontmostScript).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute osascript: %w", err)
	}
	return parseFrontmost(string(output))
}

// parseFrontmost parses "Safari, 1234".
func parseFrontmost(output string) (*window.WindowInfo, error) {
	output = strings.TrimSpace(output)
	idx := strings.LastIndex(output, ",")
	if idx == -1 {
		return nil, window.ErrNoFocusedWindow
	}

	name := strings.TrimSpace(output[:idx])
	pid, err := strconv.ParseInt(strings.TrimSpace(output[idx+1:]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid pid in osascript output %q: %w", output, err)
	}
	if name == "" {
		return nil, window.ErrNoFocusedWindow
	}

	return &window.WindowInfo{
		AppName:       name,
		ProcessName:   name,
		PID:           int32(pid),
		DisplayServer: "darwin",
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
