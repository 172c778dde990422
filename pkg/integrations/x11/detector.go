package x11

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/procuptime/procuptime/pkg/window"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Detector implements window.Detector by talking the X11 protocol directly.
type Detector struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
	dial  func() (*xgb.Conn, error)
}

// NewDetector creates a new X11 detector. The connection is opened lazily.
func NewDetector() *Detector {
	return &Detector{dial: xgb.NewConn}
}

// connect opens the display connection and interns the atoms we query.
func (d *Detector) connect() error {
	if d.conn != nil {
		return nil
	}

	conn, err := d.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}

	atoms := make(map[string]xproto.Atom, len(atomNames))
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}

	d.conn = conn
	d.root = xproto.Setup(conn).DefaultScreen(conn).Root
	d.atoms = atoms
	return nil
}

// reset drops a connection that returned an error so the next sample reconnects.
func (d *Detector) reset() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// IsAvailable checks if an X server is reachable
func (d *Detector) IsAvailable() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connect() == nil
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow(ctx context.Context) (*window.WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.connect(); err != nil {
		return nil, err
	}

	windowID, err := d.activeWindow()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, class := d.windowClass(windowID)
	appName := class
	if appName == "" {
		appName = instance
	}

	return &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   d.windowName(windowID),
		PID:           int32(d.windowPID(windowID)),
		DisplayServer: "x11",
	}, nil
}

func (d *Detector) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(d.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// activeWindow prefers the EWMH _NET_ACTIVE_WINDOW hint and falls back to the
// top-level parent of the input focus for window managers without EWMH.
func (d *Detector) activeWindow() (xproto.Window, error) {
	data, err := d.getProperty(d.root, d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		d.reset()
		return 0, fmt.Errorf("failed to read _NET_ACTIVE_WINDOW: %w", err)
	}
	if id := decodeCardinal(data); id != 0 {
		return xproto.Window(id), nil
	}

	focus, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil {
		d.reset()
		return 0, fmt.Errorf("failed to query input focus: %w", err)
	}
	if focus.Focus == 0 || focus.Focus == d.root || focus.Focus == xproto.InputFocusPointerRoot {
		return 0, window.ErrNoFocusedWindow
	}

	return d.topLevelParent(focus.Focus), nil
}

func (d *Detector) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(d.conn, win).Reply()
		if err != nil || reply.Parent == d.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (d *Detector) windowName(win xproto.Window) string {
	data, err := d.getProperty(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = d.getProperty(win, d.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (d *Detector) windowClass(win xproto.Window) (instance, class string) {
	data, err := d.getProperty(win, d.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil {
		return "", ""
	}
	return splitWMClass(data)
}

func (d *Detector) windowPID(win xproto.Window) uint32 {
	data, err := d.getProperty(win, d.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil {
		return 0
	}
	return decodeCardinal(data)
}

// decodeCardinal reads a 32-bit property value; X11 replies are little-endian
// on every server xgb talks to.
func decodeCardinal(data []byte) uint32 {
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

// splitWMClass splits the NUL-separated WM_CLASS value into instance and class.
func splitWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// Close cleans up resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	return nil
}
