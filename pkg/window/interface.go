package window

import (
	"context"
	"errors"
)

// ErrNoFocusedWindow is returned when no window currently holds input focus.
var ErrNoFocusedWindow = errors.New("no focused window")

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string // Window class or application name reported by the window system
	WindowTitle   string
	ProcessName   string // Owning process name, when the detector can resolve it itself
	PID           int32  // Owning process ID, 0 when unknown
	DisplayServer string // "x11", "wayland", "windows" or "darwin"
}

// Detector is the interface that all focused-window implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window.
	// It must return promptly once ctx is done.
	GetFocusedWindow(ctx context.Context) (*WindowInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}
