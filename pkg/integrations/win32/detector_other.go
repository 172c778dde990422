//go:build !windows

package win32

import (
	"context"
	"fmt"
	"runtime"

	"github.com/procuptime/procuptime/pkg/window"
)

// Detector is unavailable outside Windows.
type Detector struct{}

// NewDetector creates a detector that never reports a window
func NewDetector() *Detector {
	return &Detector{}
}

// IsAvailable returns false on non-Windows platforms
func (d *Detector) IsAvailable() bool {
	return false
}

// GetFocusedWindow always fails on non-Windows platforms
func (d *Detector) GetFocusedWindow(ctx context.Context) (*window.WindowInfo, error) {
	return nil, fmt.Errorf("foreground window lookup not available on %s", runtime.GOOS)
}
