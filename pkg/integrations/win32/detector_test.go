package win32

import (
	"context"
	"runtime"
	"testing"

	"github.com/procuptime/procuptime/pkg/window"
)

func TestDetectorInterface(t *testing.T) {
	var _ window.Detector = (*Detector)(nil)
}

func TestGetDisplayServer(t *testing.T) {
	if got := NewDetector().GetDisplayServer(); got != "windows" {
		t.Errorf("GetDisplayServer() = %s, want windows", got)
	}
}

func TestAvailability(t *testing.T) {
	detector := NewDetector()
	available := detector.IsAvailable()

	if runtime.GOOS != "windows" && available {
		t.Errorf("IsAvailable() = true on %s", runtime.GOOS)
	}
	if runtime.GOOS == "windows" && !available {
		t.Error("IsAvailable() = false on windows")
	}
}

func TestGetFocusedWindow(t *testing.T) {
	detector := NewDetector()
	if !detector.IsAvailable() {
		t.Skip("Windows detector not available on this system")
	}

	info, err := detector.GetFocusedWindow(context.Background())
	if err != nil {
		t.Logf("GetFocusedWindow() error (may be expected): %v", err)
		return
	}
	if info.PID <= 0 {
		t.Errorf("PID = %d, want > 0", info.PID)
	}
}
