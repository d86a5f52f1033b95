// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package ingest

import (
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Config holds push ingestion settings.
type Config struct {
	// Retention is how long a buffered observation is kept for scans.
	Retention time.Duration `koanf:"retention"`

	// DedupWindow suppresses repeat extension navigations from one source
	// to one host. Zero disables it.
	DedupWindow time.Duration `koanf:"dedup_window"`

	// MaxClockSkew is how far in the future an event timestamp may be.
	MaxClockSkew time.Duration `koanf:"max_clock_skew"`

	// APIKey, when set, must be presented in the X-Ingest-Key header.
	APIKey string `koanf:"api_key"`

	// SourceKey keys the proxy client pseudonyms. Empty means a random key
	// per process, which makes pseudonyms unstable across restarts.
	SourceKey string `koanf:"source_key"`
}

// DefaultConfig returns the standard ingest settings.
func DefaultConfig() Config {
	return Config{
		Retention:    7 * 24 * time.Hour,
		DedupWindow:  24 * time.Hour,
		MaxClockSkew: 5 * time.Minute,
	}
}

// Validate returns a *models.ConfigurationError for unusable settings.
func (c Config) Validate() error {
	if c.Retention <= 0 {
		return &models.ConfigurationError{Field: "ingest.retention", Message: "must be > 0"}
	}
	if c.DedupWindow < 0 {
		return &models.ConfigurationError{Field: "ingest.dedup_window", Message: "must be >= 0"}
	}
	if c.MaxClockSkew < 0 {
		return &models.ConfigurationError{Field: "ingest.max_clock_skew", Message: "must be >= 0"}
	}
	return nil
}
