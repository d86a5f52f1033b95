// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"net/url"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// ServiceConfig configures one collaborator endpoint.
type ServiceConfig struct {
	// URL is the service base URL. Empty disables the collaborator where
	// that is allowed.
	URL string `koanf:"url"`

	// Token is sent as a bearer token when set.
	Token string `koanf:"token"`

	// Timeout bounds a single attempt.
	Timeout time.Duration `koanf:"timeout"`

	// MaxAttempts is the total number of attempts per call.
	MaxAttempts int `koanf:"max_attempts"`

	// RetryInitial and RetryMax bound the backoff between attempts.
	RetryInitial time.Duration `koanf:"retry_initial"`
	RetryMax     time.Duration `koanf:"retry_max"`

	// RateLimit is requests per second. Zero means unlimited.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// BreakerTimeout is how long the breaker stays open before letting a trial request through.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// Config holds all collaborator endpoints.
type Config struct {
	Metadata   ServiceConfig `koanf:"metadata"`
	Governance ServiceConfig `koanf:"governance"`
	Catalog    ServiceConfig `koanf:"catalog"`
	Approvals  ServiceConfig `koanf:"approvals"`

	// CatalogCacheTTL caches alternatives lookups. Zero disables the cache.
	CatalogCacheTTL time.Duration `koanf:"catalog_cache_ttl"`
}

// DefaultServiceConfig returns the standard retry and breaker settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Timeout:        10 * time.Second,
		MaxAttempts:    3,
		RetryInitial:   200 * time.Millisecond,
		RetryMax:       5 * time.Second,
		RateLimit:      20,
		Burst:          10,
		BreakerTimeout: 2 * time.Minute,
	}
}

// DefaultConfig returns defaults for every collaborator with no URLs set.
func DefaultConfig() Config {
	return Config{
		Metadata:   DefaultServiceConfig(),
		Governance: DefaultServiceConfig(),
		Catalog:    DefaultServiceConfig(),
		Approvals:  DefaultServiceConfig(),

		CatalogCacheTTL: 5 * time.Minute,
	}
}

// Validate checks every configured endpoint.
func (c Config) Validate() error {
	services := []struct {
		name string
		sc   ServiceConfig
	}{
		{"metadata", c.Metadata},
		{"governance", c.Governance},
		{"catalog", c.Catalog},
		{"approvals", c.Approvals},
	}
	for _, s := range services {
		if err := s.sc.validate("upstream." + s.name); err != nil {
			return err
		}
	}
	if c.CatalogCacheTTL < 0 {
		return &models.ConfigurationError{Field: "upstream.catalog_cache_ttl", Message: "must be >= 0"}
	}
	return nil
}

func (c ServiceConfig) validate(prefix string) error {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &models.ConfigurationError{Field: prefix + ".url", Message: "must be an absolute http(s) URL"}
		}
	}
	if c.Timeout <= 0 {
		return &models.ConfigurationError{Field: prefix + ".timeout", Message: "must be > 0"}
	}
	if c.MaxAttempts < 1 {
		return &models.ConfigurationError{Field: prefix + ".max_attempts", Message: "must be >= 1"}
	}
	if c.RetryInitial <= 0 || c.RetryMax < c.RetryInitial {
		return &models.ConfigurationError{Field: prefix + ".retry_max", Message: "must be >= retry_initial > 0"}
	}
	if c.RateLimit < 0 {
		return &models.ConfigurationError{Field: prefix + ".rate_limit", Message: "must be >= 0"}
	}
	return nil
}
