// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package config

import (
	"time"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/events"
	"github.com/tomtom215/shadowscan/internal/ingest"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
	"github.com/tomtom215/shadowscan/internal/upstream"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables: explicit mapping in envTransformFunc
//
// Domain sections reuse the owning package's Config type so the same struct
// is validated here and consumed there.
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Logging    logging.Config   `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Store      store.Config     `koanf:"store"`
	Scan       scan.Config      `koanf:"scan"`
	Risk       risk.Config      `koanf:"risk"`
	Migration  migration.Config `koanf:"migration"`
	Events     events.Config    `koanf:"events"`
	Upstream   upstream.Config  `koanf:"upstream"`
	Ingest     ingest.Config    `koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// APIConfig holds request-handling settings.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// ClassifierConfig selects the signature registry and credential patterns.
//
// With no Signatures the built-in provider registry is used. Signatures
// replace it unless ExtendDefaults is set, in which case they are added to
// it.
type ClassifierConfig struct {
	Signatures         []classifier.Signature `koanf:"signatures"`
	ExtendDefaults     bool                   `koanf:"extend_defaults"`
	CredentialPatterns []string               `koanf:"credential_patterns"`
}

// EffectiveSignatures returns the signatures the registry is built from.
func (c ClassifierConfig) EffectiveSignatures() []classifier.Signature {
	if len(c.Signatures) == 0 {
		return classifier.DefaultSignatures()
	}
	if !c.ExtendDefaults {
		return c.Signatures
	}
	sigs := classifier.DefaultSignatures()
	return append(sigs, c.Signatures...)
}

// Build compiles the registry and credential matcher.
func (c ClassifierConfig) Build() (*classifier.Classifier, error) {
	reg, err := classifier.NewRegistry(c.EffectiveSignatures())
	if err != nil {
		return nil, err
	}
	creds, err := classifier.NewCredentialMatcher(c.CredentialPatterns)
	if err != nil {
		return nil, err
	}
	return classifier.New(reg, creds), nil
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
