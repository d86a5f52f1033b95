// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantField: "server.port"},
		{name: "unknown environment", mutate: func(c *Config) { c.Server.Environment = "qa" }, wantField: "server.environment"},
		{
			name: "wildcard cors in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
			},
			wantField: "api.cors_origins",
		},
		{
			name: "explicit cors in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.API.CORSOrigins = []string{"https://dash.example.com"}
			},
		},
		{name: "rate limit window zero", mutate: func(c *Config) { c.API.RateLimitWindow = 0 }, wantField: "api.rate_limit_window"},
		{
			name: "rate limit disabled skips bounds",
			mutate: func(c *Config) {
				c.API.RateLimitDisabled = true
				c.API.RateLimitReqs = 0
			},
		},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantField: "logging.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantField: "logging.format"},
		{name: "supervisor threshold", mutate: func(c *Config) { c.Supervisor.FailureThreshold = 0 }, wantField: "supervisor.failure_threshold"},
		{
			name: "signature out of range",
			mutate: func(c *Config) {
				c.Classifier.Signatures = []classifier.Signature{{Pattern: "x.example.com", ToolID: "x", DataSensitivity: 1.5}}
			},
			wantField: "classifier.signatures[0]",
		},
		{
			name: "duplicate signature",
			mutate: func(c *Config) {
				c.Classifier.Signatures = []classifier.Signature{
					{Pattern: "x.example.com", ToolID: "x"},
					{Pattern: "X.example.com.", ToolID: "y"},
				}
			},
			wantField: "classifier.signatures[1]",
		},
		{name: "bad tenant", mutate: func(c *Config) { c.Scan.Tenants = []string{"ok", "a.b"} }, wantField: "scan.tenants[1]"},
		{name: "weights", mutate: func(c *Config) { c.Risk.Weights.Compliance = 0.5 }, wantField: "risk.weights"},
		{name: "expiry", mutate: func(c *Config) { c.Migration.ExpiryDays = 0 }, wantField: "migration.expiry_days"},
		{name: "transport", mutate: func(c *Config) { c.Events.Transport = "kafka" }, wantField: "events.transport"},
		{name: "upstream url", mutate: func(c *Config) { c.Upstream.Catalog.URL = "ftp://x" }, wantField: "upstream.catalog.url"},
		{name: "ingest retention", mutate: func(c *Config) { c.Ingest.Retention = 0 }, wantField: "ingest.retention"},
		{name: "ingest dedup window", mutate: func(c *Config) { c.Ingest.DedupWindow = -time.Minute }, wantField: "ingest.dedup_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error on %s", tt.wantField)
			}
			var ce *models.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() error = %T %v, want *models.ConfigurationError", err, err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (%v)", ce.Field, tt.wantField, err)
			}
			if !errors.Is(err, models.ErrConfiguration) {
				t.Error("errors.Is(err, ErrConfiguration) = false")
			}
		})
	}
}

func TestValidate_StorePathRequired(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "store path") {
		t.Errorf("Validate() error = %v, want store path error", err)
	}
	cfg.Store.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with in-memory store error = %v", err)
	}
}

func TestEffectiveSignatures(t *testing.T) {
	custom := classifier.Signature{Pattern: "llm.corp.example", ToolID: "corp-llm"}
	defaults := len(classifier.DefaultSignatures())

	tests := []struct {
		name string
		cfg  ClassifierConfig
		want int
	}{
		{name: "none configured", cfg: ClassifierConfig{}, want: defaults},
		{name: "replace", cfg: ClassifierConfig{Signatures: []classifier.Signature{custom}}, want: 1},
		{name: "extend", cfg: ClassifierConfig{Signatures: []classifier.Signature{custom}, ExtendDefaults: true}, want: defaults + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.cfg.EffectiveSignatures()); got != tt.want {
				t.Errorf("len(EffectiveSignatures()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifierBuild_BadCredentialPattern(t *testing.T) {
	cfg := ClassifierConfig{CredentialPatterns: []string{"sk-[a-z"}}
	_, err := cfg.Build()
	var ce *models.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("Build() error = %v, want ConfigurationError", err)
	}
	if ce.Field != "classifier.credential_patterns[0]" {
		t.Errorf("Field = %q", ce.Field)
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard in development should warn")
	}
	cfg.API.CORSOrigins = []string{"https://dash.example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}
