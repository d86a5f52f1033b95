// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/shadowscan/internal/events"
	"github.com/tomtom215/shadowscan/internal/ingest"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
	"github.com/tomtom215/shadowscan/internal/upstream"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shadowscan/config.yaml",
	"/etc/shadowscan/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. These are
// loaded first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 20 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			MaxBodyBytes:    1 << 20,
			RequestTimeout:  60 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Classifier: ClassifierConfig{},
		Store:      store.DefaultConfig(),
		Scan:       scan.DefaultConfig(),
		Risk:       risk.DefaultConfig(),
		Migration:  migration.DefaultConfig(),
		Events:     events.DefaultConfig(),
		Upstream:   upstream.DefaultConfig(),
		Ingest:     ingest.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file. An empty path
// skips the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Not representable in a file.
	cfg.Logging.Timestamp = true
	cfg.Logging.Output = os.Stderr

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigFile returns the config file Load would read, or "".
func ConfigFile() string {
	return findConfigFile()
}

// sliceConfigPaths are parsed as comma-separated lists when they come from
// the environment.
var sliceConfigPaths = []string{
	"api.cors_origins",
	"scan.tenants",
	"classifier.credential_patterns",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the config.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// API
	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_reqs",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_max_body_bytes":  "api.max_body_bytes",
	"api_request_timeout": "api.request_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	// Classifier
	"classifier_extend_defaults":     "classifier.extend_defaults",
	"classifier_credential_patterns": "classifier.credential_patterns",

	// Store
	"store_path":          "store.path",
	"store_in_memory":     "store.in_memory",
	"store_sync_writes":   "store.sync_writes",
	"store_compression":   "store.compression",
	"store_sent_ttl":      "store.sent_ttl",
	"store_gc_interval":   "store.gc_interval",
	"store_gc_ratio":      "store.gc_ratio",
	"store_close_timeout": "store.close_timeout",

	// Scan
	"scan_population":       "scan.population",
	"scan_diversity_factor": "scan.diversity_factor",
	"scan_batch_size":       "scan.batch_size",
	"scan_max_windows":      "scan.max_windows",
	"scan_interval":         "scan.interval",
	"scan_timeout":          "scan.timeout",
	"scan_tenants":          "scan.tenants",
	"scan_auto_assess":      "scan.auto_assess",

	// Risk
	"risk_weight_sensitivity":   "risk.weights.sensitivity",
	"risk_weight_compliance":    "risk.weights.compliance",
	"risk_threshold_critical":   "risk.thresholds.critical",
	"risk_threshold_high":       "risk.thresholds.high",
	"risk_threshold_medium":     "risk.thresholds.medium",
	"risk_top_risks":            "risk.top_risks",
	"risk_breach_cost_critical": "risk.breach_cost.critical",
	"risk_breach_cost_high":     "risk.breach_cost.high",
	"risk_breach_cost_medium":   "risk.breach_cost.medium",
	"risk_breach_cost_low":      "risk.breach_cost.low",

	// Migration
	"migration_expiry_days":    "migration.expiry_days",
	"migration_sweep_interval": "migration.sweep_interval",

	// Events
	"events_transport":         "events.transport",
	"nats_url":                 "events.url",
	"nats_embedded":            "events.embedded",
	"nats_store_dir":           "events.store_dir",
	"nats_host":                "events.host",
	"nats_port":                "events.port",
	"nats_stream":              "events.stream",
	"nats_max_age":             "events.max_age",
	"nats_duplicate_window":    "events.duplicate_window",
	"events_relay_interval":    "events.relay_interval",
	"events_relay_max_backoff": "events.relay_max_backoff",
	"events_batch_size":        "events.batch_size",

	// Upstream collaborators
	"metadata_url":      "upstream.metadata.url",
	"metadata_token":    "upstream.metadata.token",
	"metadata_timeout":  "upstream.metadata.timeout",
	"governance_url":    "upstream.governance.url",
	"governance_token":  "upstream.governance.token",
	"catalog_url":       "upstream.catalog.url",
	"catalog_token":     "upstream.catalog.token",
	"catalog_cache_ttl": "upstream.catalog_cache_ttl",
	"approvals_url":     "upstream.approvals.url",
	"approvals_token":   "upstream.approvals.token",

	// Push ingestion
	"ingest_retention":      "ingest.retention",
	"ingest_dedup_window":   "ingest.dedup_window",
	"ingest_max_clock_skew": "ingest.max_clock_skew",
	"ingest_api_key":        "ingest.api_key",
	"ingest_source_key":     "ingest.source_key",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - SCAN_TENANTS -> scan.tenants
//   - GOVERNANCE_URL -> upstream.governance.url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes. The
// callback is responsible for reloading and for any locking.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
