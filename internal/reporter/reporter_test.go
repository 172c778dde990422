package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/procuptime/procuptime/internal/models"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdering(t *testing.T) {
	report := Build(store.State{"b": 10, "a": 10, "c": 3600, "d": 0}, time.Unix(0, 0))

	var names []string
	for _, e := range report.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, names)
	assert.Equal(t, uint64(3620), report.TotalSeconds)
	assert.Equal(t, "1h 0m 20s", report.Total)
	assert.Equal(t, "1h 0m 0s", report.Entries[0].Uptime)
	assert.InDelta(t, 99.45, report.Entries[0].Percentage, 0.01)
}

func TestBuildEmpty(t *testing.T) {
	report := Build(store.State{}, time.Now())
	assert.Empty(t, report.Entries)
	assert.Equal(t, "0s", report.Total)
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 0.0, BarWidth(0))
	assert.Equal(t, 60.0, BarWidth(3600))
	assert.Equal(t, MaxBarWidth, BarWidth(750*750))
	assert.Equal(t, MaxBarWidth, BarWidth(1<<40), "bars are capped")
}

func TestBarColumns(t *testing.T) {
	tests := []struct {
		seconds uint64
		columns int
		want    int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{750 * 750, 50, 50},
		{1 << 40, 50, 50},
		{140625, 100, 50}, // sqrt = 375, half the cap
		{3600, 0, 0},
	}

	for _, tt := range tests {
		entry := models.UptimeEntry{Seconds: tt.seconds, BarWidth: BarWidth(tt.seconds)}
		assert.Equal(t, tt.want, BarColumns(entry, tt.columns), "seconds=%d columns=%d", tt.seconds, tt.columns)
	}
}

func TestGenerateReportMissingFile(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing.json"))

	report, err := r.GenerateReport()
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
}

func TestGenerateReportDoesNotTouchCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processes_uptime.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

	_, err := New(path).GenerateReport()
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{oops", string(data))
	backups, err := store.CorruptBackups(path)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestFormatReportText(t *testing.T) {
	report := Build(store.State{"firefox": 3723, "zsh": 3}, time.Now())
	report.Source = "/tmp/state.json"

	out := FormatReportText(report, 80)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "Process Uptimes", lines[0])
	assert.Contains(t, out, "Total Time: 1h 2m 6s")
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "firefox"))
	assert.Contains(t, lines[len(lines)-2], "1h 2m 3s")
	assert.Contains(t, lines[len(lines)-1], "3s")
}

func TestFormatReportTextEmpty(t *testing.T) {
	out := FormatReportText(Build(store.State{}, time.Now()), 80)
	assert.Contains(t, out, "No activity recorded yet.")
}

func TestFormatReportJSON(t *testing.T) {
	out, err := FormatReportJSON(Build(store.State{"code": 61}, time.Now()))
	require.NoError(t, err)

	var decoded models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, "1m 1s", decoded.Entries[0].Uptime)
}
