// Package detector picks the window detector for the running platform.
package detector

import (
	"fmt"
	"os"
	"runtime"

	"github.com/procuptime/procuptime/pkg/integrations/darwin"
	"github.com/procuptime/procuptime/pkg/integrations/wayland"
	"github.com/procuptime/procuptime/pkg/integrations/win32"
	"github.com/procuptime/procuptime/pkg/integrations/x11"
	"github.com/procuptime/procuptime/pkg/window"
)

// New returns the first available detector for the current session.
// On Wayland sessions with XWayland, the X11 detector is tried as a fallback
// when no supported compositor is found.
func New() (window.Detector, error) {
	server := DetectDisplayServer()

	var candidates []window.Detector
	switch server {
	case "windows":
		candidates = append(candidates, win32.NewDetector())
	case "darwin":
		candidates = append(candidates, darwin.NewDetector())
	case "wayland":
		candidates = append(candidates, wayland.NewDetector(), x11.NewDetector())
	case "x11":
		candidates = append(candidates, x11.NewDetector())
	default:
		return nil, fmt.Errorf("no display server detected (XDG_SESSION_TYPE, WAYLAND_DISPLAY and DISPLAY are unset)")
	}

	for _, d := range candidates {
		if d.IsAvailable() {
			return d, nil
		}
		_ = d.Close()
	}

	return nil, fmt.Errorf("no usable window detector for %s session", server)
}

// DetectDisplayServer names the windowing system of the current session:
// "windows", "darwin", "wayland", "x11" or "unknown".
func DetectDisplayServer() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "darwin"
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
