// Package win32 reads the foreground window through user32 on Windows.
package win32

// GetDisplayServer returns "windows"
func (d *Detector) GetDisplayServer() string {
	return "windows"
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
