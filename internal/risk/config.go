// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// weightTolerance absorbs float error when checking that weights sum to 1.
const weightTolerance = 1e-9

// Weights are the composite score weights.
type Weights struct {
	Sensitivity float64 `koanf:"sensitivity" json:"sensitivity"`
	Compliance  float64 `koanf:"compliance" json:"compliance"`
}

// Thresholds are the lower bounds of the upper three bands.
type Thresholds struct {
	Critical float64 `koanf:"critical" json:"critical"`
	High     float64 `koanf:"high" json:"high"`
	Medium   float64 `koanf:"medium" json:"medium"`
}

// SLA is the migration window per severity. Zero means immediate.
type SLA struct {
	Critical time.Duration `koanf:"critical" json:"critical"`
	High     time.Duration `koanf:"high" json:"high"`
	Medium   time.Duration `koanf:"medium" json:"medium"`
	Low      time.Duration `koanf:"low" json:"low"`
}

// BreachCost is the estimated exposure per open discovery, in USD.
type BreachCost struct {
	Critical float64 `koanf:"critical" json:"critical"`
	High     float64 `koanf:"high" json:"high"`
	Medium   float64 `koanf:"medium" json:"medium"`
	Low      float64 `koanf:"low" json:"low"`
}

// Config holds all scoring parameters.
type Config struct {
	Weights    Weights    `koanf:"weights"`
	Thresholds Thresholds `koanf:"thresholds"`
	SLA        SLA        `koanf:"sla"`
	BreachCost BreachCost `koanf:"breach_cost"`
	// TopRisks is how many discoveries the risk report lists.
	TopRisks int `koanf:"top_risks"`
}

// DefaultConfig returns the standard weights, bands and SLAs.
func DefaultConfig() Config {
	return Config{
		Weights:    Weights{Sensitivity: 0.6, Compliance: 0.4},
		Thresholds: Thresholds{Critical: 0.7, High: 0.5, Medium: 0.3},
		SLA: SLA{
			Critical: 0,
			High:     7 * 24 * time.Hour,
			Medium:   30 * 24 * time.Hour,
			Low:      90 * 24 * time.Hour,
		},
		BreachCost: BreachCost{
			Critical: 4_630_000,
			High:     1_000_000,
			Medium:   250_000,
			Low:      0,
		},
		TopRisks: 10,
	}
}

// Validate returns a *models.ConfigurationError for unusable parameters.
func (c Config) Validate() error {
	w := c.Weights
	if w.Sensitivity < 0 || w.Compliance < 0 {
		return &models.ConfigurationError{Field: "risk.weights", Message: "weights must be non-negative"}
	}
	if math.Abs(w.Sensitivity+w.Compliance-1.0) > weightTolerance {
		return &models.ConfigurationError{
			Field:   "risk.weights",
			Message: fmt.Sprintf("weights must sum to 1.0, got %.6f", w.Sensitivity+w.Compliance),
		}
	}

	t := c.Thresholds
	if !(t.Medium > 0 && t.Medium < t.High && t.High < t.Critical && t.Critical <= 1.0) {
		return &models.ConfigurationError{
			Field:   "risk.thresholds",
			Message: fmt.Sprintf("thresholds must satisfy 0 < medium < high < critical <= 1, got %.3f/%.3f/%.3f", t.Medium, t.High, t.Critical),
		}
	}

	s := c.SLA
	if s.Critical < 0 || s.High < 0 || s.Medium < 0 || s.Low < 0 {
		return &models.ConfigurationError{Field: "risk.sla", Message: "SLA durations must be non-negative"}
	}
	if !(s.Critical <= s.High && s.High <= s.Medium && s.Medium <= s.Low) {
		return &models.ConfigurationError{Field: "risk.sla", Message: "SLA must not shrink as severity drops"}
	}

	if c.TopRisks < 0 {
		return &models.ConfigurationError{Field: "risk.top_risks", Message: "must be >= 0"}
	}
	return nil
}
