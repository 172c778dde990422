package viewer

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenInBrowser hands path to the platform's default opener.
func OpenInBrowser(path string) error {
	name, args := openerCommand(runtime.GOOS, path)

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
