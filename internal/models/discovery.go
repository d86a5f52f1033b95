// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import (
	"sort"
	"time"
)

// Severity is the discrete risk band derived from a risk score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AllSeverities lists the bands from lowest to highest.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank orders severities; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Valid reports whether s is a known band.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// DiscoveryStatus is a Discovery's lifecycle state.
type DiscoveryStatus string

const (
	StatusDetected  DiscoveryStatus = "detected"
	StatusAssessed  DiscoveryStatus = "assessed"
	StatusNotified  DiscoveryStatus = "notified"
	StatusMigrating DiscoveryStatus = "migrating"
	StatusMigrated  DiscoveryStatus = "migrated"
	StatusDismissed DiscoveryStatus = "dismissed"
)

// IsTerminal reports whether no further transition is possible.
func (s DiscoveryStatus) IsTerminal() bool {
	return s == StatusMigrated || s == StatusDismissed
}

// Valid reports whether s is a known status.
func (s DiscoveryStatus) Valid() bool {
	switch s {
	case StatusDetected, StatusAssessed, StatusNotified, StatusMigrating, StatusMigrated, StatusDismissed:
		return true
	}
	return false
}

// VolumeBucket is the coarse usage-volume estimate. It is derived from
// frequency and method diversity, never from content size.
type VolumeBucket string

const (
	VolumeMinimal  VolumeBucket = "minimal"
	VolumeLow      VolumeBucket = "low"
	VolumeModerate VolumeBucket = "moderate"
	VolumeHigh     VolumeBucket = "high"
	VolumeVeryHigh VolumeBucket = "very_high"
)

// VolumeBuckets lists the buckets in ascending order.
var VolumeBuckets = []VolumeBucket{VolumeMinimal, VolumeLow, VolumeModerate, VolumeHigh, VolumeVeryHigh}

// Population granularities for grouping observations.
const (
	PopulationUser       = "user"
	PopulationDepartment = "department"
	PopulationEnterprise = "enterprise"

	// EnterpriseWide is the population label used at enterprise granularity.
	EnterpriseWide = "enterprise-wide"
)

// RiskInputs are the scoring inputs for a Discovery. UpdatedAt moves whenever
// either value changes so staleness of the stored score can be detected.
type RiskInputs struct {
	DataSensitivity    float64   `json:"data_sensitivity"`
	ComplianceExposure float64   `json:"compliance_exposure"`
	Source             string    `json:"source"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WindowContribution is what one scan window contributed to a Discovery.
// Re-running a window replaces its contribution instead of adding to it.
type WindowContribution struct {
	Start               time.Time         `json:"start"`
	End                 time.Time         `json:"end"`
	Count               int64             `json:"count"`
	Methods             []DetectionMethod `json:"methods"`
	CredentialIndicator bool              `json:"credential_indicator"`
	FirstSeen           time.Time         `json:"first_seen"`
	LastSeen            time.Time         `json:"last_seen"`
}

// Discovery is one shadow-tool finding for a (tenant, tool, population) tuple.
type Discovery struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	ToolID     string `json:"tool_id"`
	ToolName   string `json:"tool_name"`
	Provider   string `json:"provider"`
	Category   string `json:"category"`
	Population string `json:"population"`

	Methods             []DetectionMethod `json:"methods"`
	Frequency           int64             `json:"frequency"`
	VolumeBucket        VolumeBucket      `json:"volume_bucket"`
	CredentialIndicator bool              `json:"credential_indicator"`

	Inputs           RiskInputs `json:"inputs"`
	RiskScore        float64    `json:"risk_score"`
	Severity         Severity   `json:"severity"`
	SeverityOverride Severity   `json:"severity_override,omitempty"`
	ScoredAt         time.Time  `json:"scored_at"`

	Status              DiscoveryStatus `json:"status"`
	StatusNote          string          `json:"status_note,omitempty"`
	NotifiedStakeholder string          `json:"notified_stakeholder,omitempty"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`

	// Windows holds the most recent per-window contributions; older ones are
	// folded into Archived.
	Windows  []WindowContribution `json:"windows"`
	Archived WindowContribution   `json:"archived"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// ScoreFresh reports whether the stored score reflects the current inputs.
func (d *Discovery) ScoreFresh() bool {
	return !d.ScoredAt.IsZero() && !d.ScoredAt.Before(d.Inputs.UpdatedAt)
}

// Recount derives Frequency, Methods, CredentialIndicator and the seen
// timestamps from the window ledger.
func (d *Discovery) Recount() {
	total := d.Archived.Count
	methods := make(map[DetectionMethod]struct{})
	for _, m := range d.Archived.Methods {
		methods[m] = struct{}{}
	}
	cred := d.Archived.CredentialIndicator
	first, last := d.Archived.FirstSeen, d.Archived.LastSeen

	for _, w := range d.Windows {
		total += w.Count
		for _, m := range w.Methods {
			methods[m] = struct{}{}
		}
		cred = cred || w.CredentialIndicator
		if !w.FirstSeen.IsZero() && (first.IsZero() || w.FirstSeen.Before(first)) {
			first = w.FirstSeen
		}
		if w.LastSeen.After(last) {
			last = w.LastSeen
		}
	}

	d.Frequency = total
	d.Methods = SortedMethods(methods)
	d.CredentialIndicator = cred
	if !first.IsZero() {
		d.FirstSeen = first
	}
	if !last.IsZero() {
		d.LastSeen = last
	}
}

// SortedMethods returns the set as a deterministic slice.
func SortedMethods(set map[DetectionMethod]struct{}) []DetectionMethod {
	out := make([]DetectionMethod, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DiscoveryFilter narrows ListDiscoveries. Nil/empty fields are ignored.
type DiscoveryFilter struct {
	Statuses   []DiscoveryStatus
	Severities []Severity
	ToolID     string
	Since      *time.Time
	Limit      int
	Offset     int
}

// Matches reports whether d passes the filter (pagination excluded).
func (f DiscoveryFilter) Matches(d *Discovery) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, d.Status) {
		return false
	}
	if len(f.Severities) > 0 && !containsSeverity(f.Severities, d.Severity) {
		return false
	}
	if f.ToolID != "" && f.ToolID != d.ToolID {
		return false
	}
	if f.Since != nil && d.LastSeen.Before(*f.Since) {
		return false
	}
	return true
}

func containsStatus(list []DiscoveryStatus, s DiscoveryStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsSeverity(list []Severity, s Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
