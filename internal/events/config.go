// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Transport names.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// Config holds event transport and relay settings.
type Config struct {
	// Transport is "channel" or "nats".
	Transport string `koanf:"transport"`

	// URL is the NATS server URL. Ignored when Embedded is set.
	URL string `koanf:"url"`

	// Embedded starts an in-process nats-server with JetStream.
	Embedded bool `koanf:"embedded"`

	// StoreDir is the embedded server's JetStream directory.
	StoreDir string `koanf:"store_dir"`

	// Host and Port bind the embedded server. Port -1 picks a free port.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Stream is the JetStream stream name.
	Stream string `koanf:"stream"`

	// MaxAge bounds retention in the stream.
	MaxAge time.Duration `koanf:"max_age"`

	// DuplicateWindow is JetStream's Nats-Msg-Id dedup window.
	DuplicateWindow time.Duration `koanf:"duplicate_window"`

	// MaxReconnects and ReconnectWait tune the NATS client.
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// RelayInterval is the outbox poll interval when idle.
	RelayInterval time.Duration `koanf:"relay_interval"`

	// RelayMaxBackoff caps the poll interval after repeated failures.
	RelayMaxBackoff time.Duration `koanf:"relay_max_backoff"`

	// BatchSize is the number of outbox entries drained per poll.
	BatchSize int `koanf:"batch_size"`

	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// DefaultConfig returns in-process defaults.
func DefaultConfig() Config {
	return Config{
		Transport:       TransportChannel,
		URL:             "nats://127.0.0.1:4222",
		StoreDir:        "/data/shadowscan/jetstream",
		Host:            "127.0.0.1",
		Port:            4222,
		Stream:          "SHADOWAI",
		MaxAge:          7 * 24 * time.Hour,
		DuplicateWindow: 2 * time.Hour,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		RelayInterval:   time.Second,
		RelayMaxBackoff: time.Minute,
		BatchSize:       100,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Validate returns a *models.ConfigurationError for unusable settings.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportChannel:
	case TransportNATS:
		if !c.Embedded && c.URL == "" {
			return &models.ConfigurationError{Field: "events.url", Message: "required unless embedded"}
		}
		if c.Stream == "" {
			return &models.ConfigurationError{Field: "events.stream", Message: "required"}
		}
	default:
		return &models.ConfigurationError{Field: "events.transport", Message: "must be channel or nats"}
	}
	if c.RelayInterval <= 0 {
		return &models.ConfigurationError{Field: "events.relay_interval", Message: "must be > 0"}
	}
	if c.RelayMaxBackoff < c.RelayInterval {
		return &models.ConfigurationError{Field: "events.relay_max_backoff", Message: "must be >= relay_interval"}
	}
	if c.BatchSize <= 0 {
		return &models.ConfigurationError{Field: "events.batch_size", Message: "must be > 0"}
	}
	if c.BreakerFailures == 0 {
		return &models.ConfigurationError{Field: "events.breaker_failures", Message: "must be > 0"}
	}
	return nil
}

// Subjects returns the stream subjects covering every event topic.
func (c Config) Subjects() []string {
	return []string{models.EventTopicPrefix + ".>"}
}
