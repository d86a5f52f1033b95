// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtom215/shadowscan/internal/models"
)

// DefaultKeyPatterns are the API-key formats of the major AI providers.
// Patterns are unanchored; CredentialMatcher anchors them for detection and
// uses them as-is for redaction.
var DefaultKeyPatterns = []string{
	// Anthropic
	`sk-ant-[A-Za-z0-9_\-]{20,}`,
	// OpenAI project, service account and legacy keys
	`sk-(?:proj-|svcacct-|admin-)?[A-Za-z0-9_\-]{20,}`,
	// Google
	`AIza[0-9A-Za-z_\-]{35}`,
	`hf_[A-Za-z0-9]{30,}`,
	`gsk_[A-Za-z0-9]{20,}`,
	`r8_[A-Za-z0-9]{20,}`,
	`xai-[A-Za-z0-9]{20,}`,
	`pplx-[A-Za-z0-9]{20,}`,
}

// redactedMarker replaces a key in redacted output.
const redactedMarker = "[REDACTED]"

// authSchemes are stripped before the anchored test.
var authSchemes = []string{"bearer ", "token ", "api-key ", "x-api-key:", "authorization:"}

// CredentialMatcher tests header values against API-key formats. It only ever
// answers yes or no.
type CredentialMatcher struct {
	anchored   []*regexp.Regexp
	unanchored *regexp.Regexp
}

// NewCredentialMatcher compiles patterns. An invalid pattern is a
// configuration error.
func NewCredentialMatcher(patterns []string) (*CredentialMatcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultKeyPatterns
	}
	m := &CredentialMatcher{anchored: make([]*regexp.Regexp, 0, len(patterns))}
	for i, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, &models.ConfigurationError{
				Field:   fmt.Sprintf("classifier.credential_patterns[%d]", i),
				Message: err.Error(),
			}
		}
		m.anchored = append(m.anchored, re)
	}
	m.unanchored = regexp.MustCompile(`(?:` + strings.Join(patterns, `|`) + `)`)
	return m, nil
}

// Indicates reports whether header carries something shaped like a provider
// API key.
func (m *CredentialMatcher) Indicates(header string) bool {
	v := strings.TrimSpace(header)
	if v == "" {
		return false
	}
	v = stripSchemes(v)
	for _, re := range m.anchored {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// stripSchemes removes any stack of header names and auth schemes, as in
// "Authorization: Bearer <key>".
func stripSchemes(v string) string {
	for stripped := true; stripped; {
		stripped = false
		lower := strings.ToLower(v)
		for _, scheme := range authSchemes {
			if strings.HasPrefix(lower, scheme) {
				v = strings.TrimSpace(v[len(scheme):])
				stripped = true
				break
			}
		}
	}
	return v
}

// Redact replaces every key-shaped substring of s.
func (m *CredentialMatcher) Redact(s string) string {
	return m.unanchored.ReplaceAllString(s, redactedMarker)
}
