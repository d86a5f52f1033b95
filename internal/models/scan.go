// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import "time"

// Window is a half-open scan interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the window is non-empty.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && w.End.After(w.Start)
}

// Equal compares instants, ignoring monotonic clock and location.
func (w Window) Equal(o Window) bool {
	return w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// Overlaps reports whether two windows share any instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ScanResult is the immutable record of one aggregation run.
type ScanResult struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	CorrelationID      string    `json:"correlation_id"`
	WindowStart        time.Time `json:"window_start"`
	WindowEnd          time.Time `json:"window_end"`
	ObservationCount   int64     `json:"observation_count"`
	MatchedCount       int64     `json:"matched_count"`
	UnmatchedCount     int64     `json:"unmatched_count"`
	SkippedCount       int64     `json:"skipped_count"`
	Batches            int       `json:"batches"`
	DiscoveriesCreated int       `json:"discoveries_created"`
	DiscoveriesUpdated int       `json:"discoveries_updated"`
	StartedAt          time.Time `json:"started_at"`
	DurationMs         int64     `json:"duration_ms"`
	Partial            bool      `json:"partial"`
	Error              string    `json:"error,omitempty"`
}

// Window returns the scanned interval.
func (r *ScanResult) Window() Window {
	return Window{Start: r.WindowStart, End: r.WindowEnd}
}

// UsageMetric is a derived per-tool rollup for the dashboard.
type UsageMetric struct {
	TenantID          string           `json:"tenant_id"`
	ToolID            string           `json:"tool_id"`
	ToolName          string           `json:"tool_name"`
	PeriodStart       time.Time        `json:"period_start"`
	PeriodEnd         time.Time        `json:"period_end"`
	DiscoveryCount    int              `json:"discovery_count"`
	TotalFrequency    int64            `json:"total_frequency"`
	SeverityHistogram map[Severity]int `json:"severity_histogram"`
}
