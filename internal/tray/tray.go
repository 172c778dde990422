// Package tray shows the system tray icon and turns its menu clicks into
// control actions.
package tray

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/getlantern/systray"
	"github.com/procuptime/procuptime/internal/control"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/sirupsen/logrus"
)

//go:embed assets/icon.png assets/icon.ico
var assets embed.FS

// ErrNoDisplay is returned when there is no desktop session to host the icon.
var ErrNoDisplay = errors.New("no graphical session available for the tray icon")

const tooltip = "Process Uptime Tracker"

// Sender accepts control actions.
type Sender interface {
	Send(control.Action) bool
}

// Tray owns the systray event loop.
type Tray struct {
	icon   []byte
	logger *logrus.Entry
}

// New checks that a tray can be shown on this machine and loads its icon.
// It fails with ErrNoDisplay outside a desktop session.
func New() (*Tray, error) {
	return newTray(runtime.GOOS, os.Getenv)
}

func newTray(goos string, getenv func(string) string) (*Tray, error) {
	icon, err := Preflight(goos, getenv)
	if err != nil {
		return nil, err
	}
	return &Tray{
		icon:   icon,
		logger: logging.NewLogger("tray"),
	}, nil
}

// Icon returns the embedded icon in the format the platform expects.
func Icon(goos string) ([]byte, error) {
	name := "assets/icon.png"
	magic := []byte("\x89PNG")
	if goos == "windows" {
		name = "assets/icon.ico"
		magic = []byte{0, 0, 1, 0}
	}

	data, err := assets.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tray icon: %w", err)
	}
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("tray icon %s is not a valid image", name)
	}
	return data, nil
}

// Preflight checks that a tray can be built on this machine and returns the
// icon to show.
func Preflight(goos string, getenv func(string) string) ([]byte, error) {
	switch goos {
	case "windows", "darwin":
	default:
		if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
			return nil, ErrNoDisplay
		}
	}
	return Icon(goos)
}

// Run builds the tray and blocks on the OS event loop, which must own the
// main thread. Menu clicks are sent to sender. background runs once the tray
// is ready; its return ends the loop and its error is returned.
func (t *Tray) Run(sender Sender, background func() error) error {

	var (
		mu     sync.Mutex
		result error
		done   = make(chan struct{})
	)

	onReady := func() {
		systray.SetIcon(t.icon)
		systray.SetTitle("procuptime")
		systray.SetTooltip(tooltip)

		mOpen := systray.AddMenuItem("Open Stats", "Show time spent per application")
		mQuit := systray.AddMenuItem("Quit", "Stop tracking and exit")

		go t.relay(sender, mOpen.ClickedCh, mQuit.ClickedCh, done)

		go func() {
			err := background()
			mu.Lock()
			result = err
			mu.Unlock()
			close(done)
			systray.Quit()
		}()

		t.logger.Debug("Tray ready")
	}

	systray.Run(onReady, func() {
		t.logger.Debug("Tray exited")
	})

	mu.Lock()
	defer mu.Unlock()
	return result
}

// relay forwards menu clicks until done is closed.
func (t *Tray) relay(sender Sender, open, quit <-chan struct{}, done <-chan struct{}) {
	for {
		select {
		case <-open:
			t.logger.Debug("Open Stats clicked")
			sender.Send(control.ActionOpenViewer)
		case <-quit:
			t.logger.Debug("Quit clicked")
			sender.Send(control.ActionQuit)
		case <-done:
			return
		}
	}
}
