// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package classifier matches network metadata against known AI-service
// signatures without ever looking at request or response content.
//
// Classification Pipeline:
//
//	RawObservation -> validate -> Registry.Match(host) -> Observation
//	                     |              |
//	                     v              v
//	               ErrMalformed   credential flag (bool only)
//
// Hostnames from DNS queries, TLS SNI and CONNECT targets all go through the
// same matcher. The Registry stores signature patterns in a trie keyed by
// reversed DNS labels, so "chat.openai.com" is stored as com -> openai -> chat
// and matches the host itself and every subdomain. A "*" label stands for
// exactly one label and may appear anywhere except the top-level domain:
//
//	*.openai.azure.com                 myorg.openai.azure.com
//	*.bedrock-runtime.*.amazonaws.com  x.bedrock-runtime.us-east-1.amazonaws.com
//
// When several patterns match, the deepest one wins, then the one with more
// literal labels.
//
// Authorization headers are tested against API-key format patterns. The
// result is a single boolean. The header string is dropped as soon as the
// test completes and never reaches an Observation, a log line or the store.
//
// Malformed signatures are rejected by NewRegistry with a
// models.ConfigurationError. Malformed observations are reported per call
// with ErrMalformed so the scanner can count and skip them.
package classifier
