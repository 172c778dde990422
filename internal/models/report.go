package models

import "time"

// UptimeEntry is one identity's row in a report.
type UptimeEntry struct {
	Name       string  `json:"name"`
	Seconds    uint64  `json:"seconds"`
	Uptime     string  `json:"uptime"`
	Percentage float64 `json:"percentage"`
	BarWidth   float64 `json:"bar_width"`
}

// Report is a ranked view over the cumulative state.
type Report struct {
	Source       string        `json:"source"`
	Entries      []UptimeEntry `json:"entries"`
	TotalSeconds uint64        `json:"total_seconds"`
	Total        string        `json:"total"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
