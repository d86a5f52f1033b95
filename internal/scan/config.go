// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package scan

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Config holds scan and aggregation settings.
type Config struct {
	// Population is the grouping granularity: user, department or enterprise.
	Population string `koanf:"population"`

	// DiversityFactor weights extra detection methods in the volume estimate.
	DiversityFactor float64 `koanf:"diversity_factor"`

	// VolumeThresholds are the lower activity bounds of low, moderate, high
	// and very_high.
	VolumeThresholds []float64 `koanf:"volume_thresholds"`

	// BatchSize is how many observations are requested per fetch.
	BatchSize int `koanf:"batch_size"`

	// MaxWindows caps the per-discovery window ledger.
	MaxWindows int `koanf:"max_windows"`

	// Interval and Timeout drive the periodic scheduler.
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`

	// Tenants are scanned by the scheduler every Interval.
	Tenants []string `koanf:"tenants"`

	// AutoAssess moves freshly scanned discoveries to assessed after a
	// scheduled run.
	AutoAssess bool `koanf:"auto_assess"`
}

// DefaultConfig returns the standard scan settings.
func DefaultConfig() Config {
	return Config{
		Population:       models.PopulationUser,
		DiversityFactor:  0.5,
		VolumeThresholds: []float64{5, 50, 500, 5000},
		BatchSize:        500,
		MaxWindows:       168,
		Interval:         time.Hour,
		Timeout:          5 * time.Minute,
		AutoAssess:       true,
	}
}

// Validate returns a *models.ConfigurationError for unusable settings.
func (c Config) Validate() error {
	switch c.Population {
	case models.PopulationUser, models.PopulationDepartment, models.PopulationEnterprise:
	default:
		return &models.ConfigurationError{Field: "scan.population", Message: fmt.Sprintf("unknown granularity %q", c.Population)}
	}
	if c.DiversityFactor < 0 || math.IsNaN(c.DiversityFactor) {
		return &models.ConfigurationError{Field: "scan.diversity_factor", Message: "must be >= 0"}
	}
	if len(c.VolumeThresholds) != len(models.VolumeBuckets)-1 {
		return &models.ConfigurationError{
			Field:   "scan.volume_thresholds",
			Message: fmt.Sprintf("need %d thresholds, got %d", len(models.VolumeBuckets)-1, len(c.VolumeThresholds)),
		}
	}
	for i, v := range c.VolumeThresholds {
		if v <= 0 || (i > 0 && v <= c.VolumeThresholds[i-1]) {
			return &models.ConfigurationError{Field: "scan.volume_thresholds", Message: "must be positive and strictly increasing"}
		}
	}
	if c.BatchSize <= 0 {
		return &models.ConfigurationError{Field: "scan.batch_size", Message: "must be > 0"}
	}
	if c.MaxWindows <= 0 {
		return &models.ConfigurationError{Field: "scan.max_windows", Message: "must be > 0"}
	}
	if c.Interval <= 0 {
		return &models.ConfigurationError{Field: "scan.interval", Message: "must be > 0"}
	}
	if c.Timeout <= 0 {
		return &models.ConfigurationError{Field: "scan.timeout", Message: "must be > 0"}
	}
	return nil
}

// Volume buckets a frequency and method count. It is monotonic in both.
func (c Config) Volume(frequency int64, methods int) models.VolumeBucket {
	if methods < 1 {
		methods = 1
	}
	activity := float64(frequency) * (1 + c.DiversityFactor*float64(methods-1))
	bucket := models.VolumeBuckets[0]
	for i, th := range c.VolumeThresholds {
		if activity >= th {
			bucket = models.VolumeBuckets[i+1]
		}
	}
	return bucket
}
