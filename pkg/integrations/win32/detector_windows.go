//go:build windows

package win32

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/procuptime/procuptime/pkg/window"
	"golang.org/x/sys/windows"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")
)

// Detector implements window.Detector with GetForegroundWindow.
type Detector struct{}

// NewDetector creates a new Windows detector
func NewDetector() *Detector {
	return &Detector{}
}

// IsAvailable reports whether user32 can be loaded
func (d *Detector) IsAvailable() bool {
	return user32.Load() == nil
}

// GetFocusedWindow returns the foreground window and its owning process ID.
func (d *Detector) GetFocusedWindow(ctx context.Context) (*window.WindowInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return nil, window.ErrNoFocusedWindow
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return nil, fmt.Errorf("failed to resolve window owner: %w", err)
	}
	if pid == 0 {
		return nil, window.ErrNoFocusedWindow
	}

	return &window.WindowInfo{
		WindowTitle:   windowText(hwnd),
		PID:           int32(pid),
		DisplayServer: "windows",
	}, nil
}

func windowText(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
