package viewer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/procuptime/procuptime/internal/reporter"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeState(t *testing.T, state store.State) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processes_uptime.json")
	require.NoError(t, store.New(path).Save(state))
	return path
}

func runToFile(t *testing.T, opts Options) string {
	t.Helper()
	out, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer out.Close()

	opts.Out = out
	require.NoError(t, Run(context.Background(), opts))

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	return string(data)
}

func TestRunAutoFallsBackToText(t *testing.T) {
	path := writeState(t, store.State{"firefox": 125, "code": 3723})

	out := runToFile(t, Options{StatePath: path})

	assert.Contains(t, out, "Process Uptimes")
	assert.Less(t, strings.Index(out, "code"), strings.Index(out, "firefox"))
	assert.Contains(t, out, "2m 5s")
}

func TestRunJSON(t *testing.T) {
	path := writeState(t, store.State{"firefox": 5})

	out := runToFile(t, Options{StatePath: path, Mode: ModeJSON})

	assert.Contains(t, out, `"name": "firefox"`)
	assert.Contains(t, out, `"seconds": 5`)
}

func TestRunHTMLOpensReport(t *testing.T) {
	path := writeState(t, store.State{"firefox": 3600})
	htmlPath := filepath.Join(t.TempDir(), "report.html")

	var opened string
	runToFile(t, Options{
		StatePath: path,
		Mode:      ModeHTML,
		HTMLPath:  htmlPath,
		Opener: func(p string) error {
			opened = p
			return nil
		},
	})

	assert.Equal(t, htmlPath, opened)
	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "firefox")
	assert.Contains(t, string(data), "width: 60.0px")
}

func TestRunHTMLNoOpen(t *testing.T) {
	path := writeState(t, store.State{"a": 1})
	htmlPath := filepath.Join(t.TempDir(), "report.html")

	out := runToFile(t, Options{
		StatePath: path,
		Mode:      ModeHTML,
		HTMLPath:  htmlPath,
		NoOpen:    true,
		Opener: func(string) error {
			t.Fatal("opener called with NoOpen")
			return nil
		},
	})

	assert.Equal(t, htmlPath+"\n", out)
}

func TestRenderHTMLEscapesNames(t *testing.T) {
	report := reporter.Build(store.State{"<script>alert(1)</script>": 10}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, report))

	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRenderHTMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, reporter.Build(store.State{}, time.Now())))
	assert.Contains(t, buf.String(), "No activity recorded yet.")
}

func TestOpenerCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"darwin", "open"},
		{"windows", "rundll32"},
	}

	for _, tt := range tests {
		name, args := openerCommand(tt.goos, "/tmp/report.html")
		assert.Equal(t, tt.want, name)
		assert.Equal(t, "/tmp/report.html", args[len(args)-1])
	}
}

func TestModelUpdateAndView(t *testing.T) {
	path := writeState(t, store.State{"firefox": 3723, "zsh": 3})
	m := newModel(reporter.New(path), nil)

	assert.Equal(t, "Loading...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(model)

	view := m.View()
	assert.Contains(t, view, "Process Uptimes")
	assert.Contains(t, view, "firefox")
	assert.Contains(t, view, "1h 2m 3s")
	assert.Contains(t, view, "zsh")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelReloadsOnChange(t *testing.T) {
	path := writeState(t, store.State{"firefox": 1})
	changes := make(chan struct{}, 1)
	m := newModel(reporter.New(path), changes)

	require.NoError(t, store.New(path).Save(store.State{"firefox": 1, "code": 99}))
	updated, cmd := m.Update(changedMsg{})
	m = updated.(model)

	require.NotNil(t, cmd, "model keeps waiting for further changes")
	require.Len(t, m.report.Entries, 2)
	assert.Equal(t, "code", m.report.Entries[0].Name)
}

func TestModelScrollIsClamped(t *testing.T) {
	state := store.State{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		state[name] = 10
	}
	m := newModel(reporter.New(writeState(t, state)), nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = updated.(model)

	for i := 0; i < 20; i++ {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = updated.(model)
	}
	assert.Equal(t, len(state)-m.visibleRows(), m.offset)

	for i := 0; i < 20; i++ {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
		m = updated.(model)
	}
	assert.Equal(t, 0, m.offset)
}

func TestWatcherSignalsAtomicSave(t *testing.T) {
	path := writeState(t, store.State{"a": 1})

	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, store.New(path).Save(store.State{"a": 2}))

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification after save")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeState(t, store.State{"a": 1})

	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
