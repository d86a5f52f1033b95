// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package classifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/shadowscan/internal/models"
)

// ErrMalformed marks an observation that cannot be classified at all.
var ErrMalformed = errors.New("malformed observation")

// Match is a classified observation together with the signature it hit.
type Match struct {
	Observation models.Observation
	Signature   Signature
}

// Classifier is a pure function over a Registry and a CredentialMatcher.
type Classifier struct {
	registry *Registry
	creds    *CredentialMatcher
}

// New builds a Classifier.
func New(registry *Registry, creds *CredentialMatcher) *Classifier {
	return &Classifier{registry: registry, creds: creds}
}

// Registry returns the signature registry in use.
func (c *Classifier) Registry() *Registry {
	return c.registry
}

// Classify returns the match for raw, false if the host is not a known AI
// endpoint, or an error wrapping ErrMalformed. The auth header is consumed
// here and never copied to the result.
func (c *Classifier) Classify(raw models.RawObservation) (Match, bool, error) {
	credential := false
	if raw.AuthHeader != "" {
		credential = c.creds.Indicates(raw.AuthHeader)
		raw.AuthHeader = ""
	}

	if strings.TrimSpace(raw.TenantID) == "" {
		return Match{}, false, fmt.Errorf("%w: missing tenant", ErrMalformed)
	}
	if !raw.Method.Valid() {
		return Match{}, false, fmt.Errorf("%w: unknown detection method %q", ErrMalformed, raw.Method)
	}
	if raw.Timestamp.IsZero() {
		return Match{}, false, fmt.Errorf("%w: missing timestamp", ErrMalformed)
	}
	host, ok := NormalizeHost(raw.Host)
	if !ok {
		return Match{}, false, fmt.Errorf("%w: unusable host", ErrMalformed)
	}

	sig, ok := c.registry.Match(host)
	if !ok {
		return Match{}, false, nil
	}

	return Match{
		Observation: models.Observation{
			TenantID:            raw.TenantID,
			SourceID:            raw.SourceID,
			Department:          raw.Department,
			Host:                host,
			Method:              raw.Method,
			CredentialIndicator: credential,
			Timestamp:           raw.Timestamp.UTC(),
		},
		Signature: sig,
	}, true, nil
}
