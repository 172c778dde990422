package window

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type MockDetector struct {
	windowInfo    *WindowInfo
	err           error
	isAvailable   bool
	displayServer string
	closeError    error
}

func (m *MockDetector) GetFocusedWindow(ctx context.Context) (*WindowInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.windowInfo, m.err
}

func (m *MockDetector) IsAvailable() bool {
	return m.isAvailable
}

func (m *MockDetector) GetDisplayServer() string {
	return m.displayServer
}

func (m *MockDetector) Close() error {
	return m.closeError
}

func TestMockDetector(t *testing.T) {
	var _ Detector = (*MockDetector)(nil)

	mock := &MockDetector{
		windowInfo: &WindowInfo{
			AppName:       "TestApp",
			WindowTitle:   "Test Window",
			ProcessName:   "test",
			PID:           1234,
			DisplayServer: "x11",
		},
		isAvailable:   true,
		displayServer: "x11",
	}

	windowInfo, err := mock.GetFocusedWindow(context.Background())
	if err != nil {
		t.Errorf("GetFocusedWindow() error: %v", err)
	}
	if windowInfo.AppName != "TestApp" {
		t.Errorf("AppName = %s, want TestApp", windowInfo.AppName)
	}
	if windowInfo.PID != 1234 {
		t.Errorf("PID = %d, want 1234", windowInfo.PID)
	}

	if !mock.IsAvailable() {
		t.Error("IsAvailable() = false, want true")
	}

	if mock.GetDisplayServer() != "x11" {
		t.Errorf("GetDisplayServer() = %s, want x11", mock.GetDisplayServer())
	}

	if err := mock.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestMockDetectorHonorsContext(t *testing.T) {
	mock := &MockDetector{windowInfo: &WindowInfo{AppName: "TestApp"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.GetFocusedWindow(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("GetFocusedWindow() error = %v, want context.Canceled", err)
	}
}

func TestErrNoFocusedWindowWrapping(t *testing.T) {
	err := fmt.Errorf("x11: %w", ErrNoFocusedWindow)
	if !errors.Is(err, ErrNoFocusedWindow) {
		t.Error("wrapped error should match ErrNoFocusedWindow")
	}
}

func ExampleDetector() {
	mock := &MockDetector{
		windowInfo: &WindowInfo{
			AppName:       "Firefox",
			WindowTitle:   "Example Page",
			ProcessName:   "firefox",
			DisplayServer: "x11",
		},
		isAvailable:   true,
		displayServer: "x11",
	}

	if mock.IsAvailable() {
		windowInfo, _ := mock.GetFocusedWindow(context.Background())
		fmt.Println("Current app:", windowInfo.ProcessName)
	}
	// Output:
	// Current app: firefox
}
