// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package risk

import (
	"math"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// scorePrecision is the rounding factor applied to every score.
const scorePrecision = 10000

// Score computes the clamped, rounded composite risk score.
// NaN inputs contribute zero.
func Score(sensitivity, exposure float64, w Weights) float64 {
	raw := w.Sensitivity*finite(sensitivity) + w.Compliance*finite(exposure)
	if math.IsNaN(raw) {
		// 0 * Inf
		return 0
	}
	return round(clamp(raw, 0, 1))
}

// Band maps a score to its severity. A score equal to a threshold belongs
// to the band that threshold opens.
func Band(score float64, t Thresholds) models.Severity {
	switch {
	case score >= t.Critical:
		return models.SeverityCritical
	case score >= t.High:
		return models.SeverityHigh
	case score >= t.Medium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Assessor applies a validated Config.
type Assessor struct {
	cfg Config
}

// NewAssessor validates cfg and returns an Assessor.
func NewAssessor(cfg Config) (*Assessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Assessor{cfg: cfg}, nil
}

// Config returns the scoring parameters in use.
func (a *Assessor) Config() Config {
	return a.cfg
}

// Score returns (risk_score, severity) for the given inputs.
func (a *Assessor) Score(sensitivity, exposure float64) (float64, models.Severity) {
	s := Score(sensitivity, exposure, a.cfg.Weights)
	return s, Band(s, a.cfg.Thresholds)
}

// SLA returns the migration window implied by a severity.
func (a *Assessor) SLA(sev models.Severity) time.Duration {
	switch sev {
	case models.SeverityCritical:
		return a.cfg.SLA.Critical
	case models.SeverityHigh:
		return a.cfg.SLA.High
	case models.SeverityMedium:
		return a.cfg.SLA.Medium
	default:
		return a.cfg.SLA.Low
	}
}

// Assess recomputes score and severity from d's current inputs and returns
// the updated copy. A governance override can raise the severity but never
// lower it below the computed band.
func (a *Assessor) Assess(d models.Discovery, now time.Time) models.Discovery {
	score, sev := a.Score(d.Inputs.DataSensitivity, d.Inputs.ComplianceExposure)
	d.RiskScore = score
	d.Severity = models.MaxSeverity(sev, d.SeverityOverride)
	d.ScoredAt = now
	if d.ScoredAt.Before(d.Inputs.UpdatedAt) {
		d.ScoredAt = d.Inputs.UpdatedAt
	}
	return d
}

// Stakeholder picks who gets notified for a severity.
func Stakeholder(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical, models.SeverityHigh:
		return "security"
	case models.SeverityMedium:
		return "manager"
	default:
		return "user"
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64) float64 {
	return math.Round(v*scorePrecision) / scorePrecision
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
