package wayland

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/procuptime/procuptime/pkg/window"
)

// Detector implements window.Detector for Wayland compositors that expose
// the focused window through their own IPC tools.
type Detector struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	hasGdbus   bool
}

// NewDetector creates a new Wayland detector
func NewDetector() *Detector {
	d := &Detector{}
	d.hasSwaymsg = commandExists("swaymsg")
	d.hasHyprctl = commandExists("hyprctl")
	d.hasGdbus = commandExists("gdbus")
	d.compositor = detectCompositor()
	return d
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor identifies the running compositor from its session
// variables, falling back to looking for its process.
func detectCompositor() string {
	if os.Getenv("SWAYSOCK") != "" {
		return "sway"
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "hyprland"
	}
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	if strings.Contains(desktop, "gnome") || strings.Contains(desktop, "ubuntu") {
		return "gnome"
	}

	compositors := []struct{ process, name string }{
		{"sway", "sway"},
		{"Hyprland", "hyprland"},
		{"gnome-shell", "gnome"},
	}
	for _, c := range compositors {
		if err := exec.Command("pgrep", "-x", c.process).Run(); err == nil {
			return c.name
		}
	}

	return "unknown"
}

// IsAvailable checks if Wayland detection is available
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case "sway":
		return d.hasSwaymsg
	case "hyprland":
		return d.hasHyprctl
	case "gnome":
		return d.hasGdbus
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow(ctx context.Context) (*window.WindowInfo, error) {
	var (
		info *window.WindowInfo
		err  error
	)

	switch d.compositor {
	case "sway":
		info, err = d.getFocusedWindowSway(ctx)
	case "hyprland":
		info, err = d.getFocusedWindowHyprland(ctx)
	case "gnome":
		info, err = d.getFocusedWindowGnome(ctx)
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	info.DisplayServer = "wayland"
	return info, nil
}

// swayNode is the subset of the sway tree we need.
type swayNode struct {
	Name          string     `json:"name"`
	Focused       bool       `json:"focused"`
	AppID         string     `json:"app_id"`
	PID           int32      `json:"pid"`
	Type          string     `json:"type"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
	WindowProps   *struct {
		Class string `json:"class"`
	} `json:"window_properties"`
}

// getFocusedWindowSway gets focused window info from Sway
func (d *Detector) getFocusedWindowSway(ctx context.Context) (*window.WindowInfo, error) {
	output, err := exec.CommandContext(ctx, "swaymsg", "-t", "get_tree", "-r").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	return parseSwayTree(output)
}

// parseSwayTree walks the sway layout tree for the focused view.
func parseSwayTree(data []byte) (*window.WindowInfo, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil || node.Type == "workspace" {
		return nil, window.ErrNoFocusedWindow
	}

	appName := node.AppID
	if appName == "" && node.WindowProps != nil {
		appName = node.WindowProps.Class
	}

	return &window.WindowInfo{
		AppName:     appName,
		WindowTitle: node.Name,
		PID:         node.PID,
	}, nil
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused {
		return node
	}
	for i := range node.Nodes {
		if found := findFocused(&node.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range node.FloatingNodes {
		if found := findFocused(&node.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

// getFocusedWindowHyprland gets focused window info from Hyprland
func (d *Detector) getFocusedWindowHyprland(ctx context.Context) (*window.WindowInfo, error) {
	output, err := exec.CommandContext(ctx, "hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}
	return parseHyprlandWindow(output)
}

// parseHyprlandWindow parses `hyprctl activewindow -j` output.
func parseHyprlandWindow(data []byte) (*window.WindowInfo, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "{}" || trimmed == "Invalid" {
		return nil, window.ErrNoFocusedWindow
	}

	var active struct {
		Class string `json:"class"`
		Title string `json:"title"`
		PID   int32  `json:"pid"`
	}
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	if active.Class == "" && active.PID <= 0 {
		return nil, window.ErrNoFocusedWindow
	}

	pid := active.PID
	if pid < 0 {
		pid = 0
	}

	return &window.WindowInfo{
		AppName:     active.Class,
		WindowTitle: active.Title,
		PID:         pid,
	}, nil
}

const gnomeScript = `
	let fw = global.display.get_focus_window();
	fw ? JSON.stringify({wm_class: fw.get_wm_class() || '', title: fw.get_title() || '', pid: fw.get_pid() || 0}) : 'null';
`

// getFocusedWindowGnome gets focused window info from GNOME Shell via D-Bus.
// Shell.Eval is disabled unless GNOME runs in unsafe mode or an extension
// re-enables it; callers see an error in that case.
func (d *Detector) getFocusedWindowGnome(ctx context.Context) (*window.WindowInfo, error) {
	output, err := exec.CommandContext(ctx, "gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval",
		gnomeScript).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query GNOME Shell: %w", err)
	}
	return parseGnomeEval(string(output))
}

// parseGnomeEval parses gdbus output of the form (true, '{"wm_class":...}').
func parseGnomeEval(output string) (*window.WindowInfo, error) {
	result := strings.TrimSpace(output)
	if !strings.HasPrefix(result, "(true,") {
		return nil, fmt.Errorf("GNOME Shell.Eval refused the request: %s", result)
	}

	start := strings.Index(result, "{")
	end := strings.LastIndex(result, "}")
	if start == -1 || end < start {
		return nil, window.ErrNoFocusedWindow
	}

	payload := strings.ReplaceAll(result[start:end+1], `\"`, `"`)

	var focused struct {
		WMClass string      `json:"wm_class"`
		Title   string      `json:"title"`
		PID     json.Number `json:"pid"`
	}
	if err := json.Unmarshal([]byte(payload), &focused); err != nil {
		return nil, fmt.Errorf("failed to parse GNOME Shell reply: %w", err)
	}

	pid, _ := strconv.ParseInt(focused.PID.String(), 10, 32)
	if pid < 0 {
		pid = 0
	}

	return &window.WindowInfo{
		AppName:     focused.WMClass,
		WindowTitle: focused.Title,
		PID:         int32(pid),
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
