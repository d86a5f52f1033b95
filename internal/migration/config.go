// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package migration

import (
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Config holds migration workflow settings.
type Config struct {
	// ExpiryDays is the plan horizon: expires_at = created_at + ExpiryDays.
	ExpiryDays int `koanf:"expiry_days"`

	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// DefaultConfig returns the standard workflow settings.
func DefaultConfig() Config {
	return Config{
		ExpiryDays:    90,
		SweepInterval: 15 * time.Minute,
	}
}

// Validate returns a *models.ConfigurationError for unusable settings.
func (c Config) Validate() error {
	if c.ExpiryDays <= 0 {
		return &models.ConfigurationError{Field: "migration.expiry_days", Message: "must be > 0"}
	}
	if c.SweepInterval <= 0 {
		return &models.ConfigurationError{Field: "migration.sweep_interval", Message: "must be > 0"}
	}
	return nil
}

// Horizon returns the plan lifetime.
func (c Config) Horizon() time.Duration {
	return time.Duration(c.ExpiryDays) * 24 * time.Hour
}
