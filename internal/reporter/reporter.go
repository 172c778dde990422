// Package reporter ranks the cumulative state for display.
package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/procuptime/procuptime/internal/models"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/procuptime/procuptime/pkg/utils"
)

// MaxBarWidth caps the square-root bar length.
const MaxBarWidth = 750.0

// Reporter handles report generation
type Reporter struct {
	path string
	now  func() time.Time
}

// New creates a reporter reading the state file at path
func New(path string) *Reporter {
	return &Reporter{
		path: path,
		now:  time.Now,
	}
}

// GenerateReport reads the state file once and ranks it. The file is never
// modified; a missing file produces an empty report.
func (r *Reporter) GenerateReport() (*models.Report, error) {
	state, err := store.Read(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", r.path, err)
		}
		state = store.State{}
	}

	report := Build(state, r.now())
	report.Source = r.path
	return report, nil
}

// Build ranks state by descending uptime, breaking ties by name.
func Build(state store.State, now time.Time) *models.Report {
	entries := make([]models.UptimeEntry, 0, len(state))
	total := state.Total()

	for name, seconds := range state {
		entry := models.UptimeEntry{
			Name:     name,
			Seconds:  seconds,
			Uptime:   utils.FormatUptime(seconds),
			BarWidth: BarWidth(seconds),
		}
		if total > 0 {
			entry.Percentage = float64(seconds) / float64(total) * 100.0
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}
		return entries[i].Name < entries[j].Name
	})

	return &models.Report{
		Entries:      entries,
		TotalSeconds: total,
		Total:        utils.FormatUptime(total),
		GeneratedAt:  now,
	}
}

// BarWidth is the square root of seconds, capped at MaxBarWidth.
func BarWidth(seconds uint64) float64 {
	return math.Min(math.Sqrt(float64(seconds)), MaxBarWidth)
}

// BarColumns scales a bar width onto a budget of terminal columns. Any
// non-zero uptime gets at least one column.
func BarColumns(entry models.UptimeEntry, columns int) int {
	if columns <= 0 || entry.Seconds == 0 {
		return 0
	}
	n := int(math.Round(entry.BarWidth / MaxBarWidth * float64(columns)))
	if n < 1 {
		n = 1
	}
	if n > columns {
		n = columns
	}
	return n
}

// FormatReportText formats the report as a plain table with bars
func FormatReportText(report *models.Report, width int) string {
	var b strings.Builder

	b.WriteString("Process Uptimes\n")
	if report.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", report.Source)
	}
	fmt.Fprintf(&b, "Total Time: %s\n\n", report.Total)

	if len(report.Entries) == 0 {
		b.WriteString("No activity recorded yet.\n")
		return b.String()
	}

	const nameWidth, uptimeWidth = 30, 14
	barBudget := width - nameWidth - uptimeWidth - 4
	if barBudget < 10 {
		barBudget = 10
	}

	for _, entry := range report.Entries {
		fmt.Fprintf(&b, "%-*s %*s  %s\n",
			nameWidth, utils.Truncate(entry.Name, nameWidth),
			uptimeWidth, entry.Uptime,
			strings.Repeat("█", BarColumns(entry, barBudget)))
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
