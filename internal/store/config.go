// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"fmt"
	"time"
)

// Config holds BadgerDB settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps everything in RAM. Used by tests and demos.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites forces fsync after every commit.
	SyncWrites bool `koanf:"sync_writes"`

	// Compression enables Snappy compression of values.
	Compression bool `koanf:"compression"`

	// SentTTL is how long published-event markers are kept.
	SentTTL time.Duration `koanf:"sent_ttl"`

	// MemTableSize is the size of each memtable in bytes.
	MemTableSize int64 `koanf:"memtable_size"`

	// GCInterval is the time between value log GC runs. Zero disables GC.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the discard ratio for value log GC.
	GCRatio float64 `koanf:"gc_ratio"`

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:         "/data/shadowscan",
		SyncWrites:   true,
		Compression:  true,
		SentTTL:      24 * time.Hour,
		MemTableSize: 16 * 1024 * 1024,
		GCInterval:   10 * time.Minute,
		GCRatio:      0.5,
		CloseTimeout: 30 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("store path is required unless in_memory is set")
	}
	if c.MemTableSize > 0 && c.MemTableSize < 1<<20 {
		return fmt.Errorf("memtable_size must be at least 1MB, got %d", c.MemTableSize)
	}
	if c.GCInterval > 0 && (c.GCRatio <= 0 || c.GCRatio >= 1) {
		return fmt.Errorf("gc_ratio must be in (0,1) when GC is enabled, got %v", c.GCRatio)
	}
	if c.SentTTL < 0 {
		return fmt.Errorf("sent_ttl must be non-negative")
	}
	return nil
}
