// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/validation"
)

// Validate checks every section. Domain sections delegate to their owning
// package so the rules live next to the code that depends on them.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateLogging,
		c.validateSupervisor,
		c.validateClassifier,
		c.Store.Validate,
		c.Scan.Validate,
		c.validateTenants,
		c.Risk.Validate,
		c.Migration.Validate,
		c.Events.Validate,
		c.Upstream.Validate,
		c.Ingest.Validate,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &models.ConfigurationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if !validEnvironments[c.Server.Environment] {
		return &models.ConfigurationError{Field: "server.environment", Message: "must be development, staging or production"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &models.ConfigurationError{Field: "server.shutdown_timeout", Message: "must be > 0"}
	}
	return nil
}

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateAPI() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return &models.ConfigurationError{
			Field:   "api.cors_origins",
			Message: "wildcard origin is not allowed in production; list the dashboard origins explicitly",
		}
	}
	if c.API.MaxBodyBytes <= 0 {
		return &models.ConfigurationError{Field: "api.max_body_bytes", Message: "must be > 0"}
	}
	if c.API.RequestTimeout <= 0 {
		return &models.ConfigurationError{Field: "api.request_timeout", Message: "must be > 0"}
	}
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimitReqs < minRateLimitRequests || c.API.RateLimitReqs > maxRateLimitRequests {
		return &models.ConfigurationError{
			Field:   "api.rate_limit_reqs",
			Message: fmt.Sprintf("must be between %d and %d", minRateLimitRequests, maxRateLimitRequests),
		}
	}
	if c.API.RateLimitWindow < minRateLimitWindow || c.API.RateLimitWindow > maxRateLimitWindow {
		return &models.ConfigurationError{
			Field:   "api.rate_limit_window",
			Message: fmt.Sprintf("must be between %v and %v", minRateLimitWindow, maxRateLimitWindow),
		}
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.API.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard origin outside production, which
// is logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return !c.IsProduction() && c.hasWildcardCORS()
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return &models.ConfigurationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &models.ConfigurationError{Field: "logging.format", Message: "must be json or console"}
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	s := c.Supervisor
	if s.FailureThreshold <= 0 {
		return &models.ConfigurationError{Field: "supervisor.failure_threshold", Message: "must be > 0"}
	}
	if s.FailureDecay <= 0 {
		return &models.ConfigurationError{Field: "supervisor.failure_decay", Message: "must be > 0"}
	}
	if s.FailureBackoff < 0 || s.ShutdownTimeout <= 0 {
		return &models.ConfigurationError{Field: "supervisor", Message: "backoff must be >= 0 and shutdown_timeout > 0"}
	}
	return nil
}

// validateClassifier checks signatures. Field-level signature
// rules go through the shared validator first; pattern syntax and
// duplicates are the registry's job and surface from Build.
func (c *Config) validateClassifier() error {
	for i := range c.Classifier.Signatures {
		if verr := validation.ValidateStruct(&c.Classifier.Signatures[i]); verr != nil {
			return &models.ConfigurationError{
				Field:   fmt.Sprintf("classifier.signatures[%d]", i),
				Message: verr.Error(),
			}
		}
	}
	if _, err := c.Classifier.Build(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTenants() error {
	for i, t := range c.Scan.Tenants {
		if !validation.ValidTenantID(t) {
			return &models.ConfigurationError{Field: fmt.Sprintf("scan.tenants[%d]", i), Message: fmt.Sprintf("invalid tenant id %q", t)}
		}
	}
	return nil
}
