// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import "time"

// DetectionMethod is the metadata signal an observation was captured from.
type DetectionMethod string

const (
	MethodDNS               DetectionMethod = "dns"
	MethodSNI               DetectionMethod = "sni"
	MethodConnectTunnel     DetectionMethod = "connect-tunnel"
	MethodAuthHeaderPattern DetectionMethod = "auth-header-pattern"

	// MethodBrowserNavigation is a navigation reported by the browser
	// extension. It carries a host name only.
	MethodBrowserNavigation DetectionMethod = "browser-navigation"
)

// Valid reports whether m is one of the known detection methods.
func (m DetectionMethod) Valid() bool {
	switch m {
	case MethodDNS, MethodSNI, MethodConnectTunnel, MethodAuthHeaderPattern, MethodBrowserNavigation:
		return true
	}
	return false
}

// RawObservation is a single metadata record as supplied by a metadata source.
//
// AuthHeader holds the value of an Authorization (or api-key) header when the
// collector saw one. It exists only so the classifier can test it against
// known key formats; it is excluded from every encoding and must be dropped
// as soon as classification is done.
type RawObservation struct {
	TenantID   string          `json:"tenant_id"`
	SourceID   string          `json:"source_id"`
	Department string          `json:"department,omitempty"`
	Host       string          `json:"host"`
	Method     DetectionMethod `json:"method"`
	Timestamp  time.Time       `json:"timestamp"`
	AuthHeader string          `json:"-"`
}

// Observation is a classified, sanitized observation. It never carries header
// values or body bytes, only the boolean credential indicator.
type Observation struct {
	TenantID            string          `json:"tenant_id"`
	SourceID            string          `json:"source_id"`
	Department          string          `json:"department,omitempty"`
	Host                string          `json:"host"`
	Method              DetectionMethod `json:"method"`
	CredentialIndicator bool            `json:"credential_indicator"`
	Timestamp           time.Time       `json:"timestamp"`
}
