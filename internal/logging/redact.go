// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package logging

import (
	"regexp"
	"strings"
)

// Observation metadata carries Authorization headers and upstream error
// bodies can echo request headers back. Nothing that looks like a
// credential may reach a log line.

const redacted = "[REDACTED]"

var credentialPatterns = []*regexp.Regexp{
	// Authorization: Bearer xyz / Basic xyz
	regexp.MustCompile(`(?i)\b(bearer|basic|token)\s+[A-Za-z0-9._~+/=-]{8,}`),
	// key=value and "key":"value" pairs with a secret-looking key
	regexp.MustCompile(`(?i)("?(?:api[_-]?key|x-api-key|access[_-]?token|secret|password|authorization)"?\s*[:=]\s*"?)[^\s",}&]+`),
	// Provider key shapes: sk-..., sk-ant-..., AIza..., ghp_...
	regexp.MustCompile(`\b(?:sk-(?:ant-|proj-)?[A-Za-z0-9_-]{16,}|AIza[0-9A-Za-z_-]{30,}|gh[pousr]_[A-Za-z0-9]{20,})`),
}

// RedactCredentials replaces anything that looks like an API key, bearer
// token or secret assignment in s.
func RedactCredentials(s string) string {
	if s == "" {
		return s
	}
	s = credentialPatterns[0].ReplaceAllString(s, "$1 "+redacted)
	s = credentialPatterns[1].ReplaceAllString(s, "${1}"+redacted)
	return credentialPatterns[2].ReplaceAllString(s, redacted)
}

// SanitizeToken keeps the first and last four characters of a token.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeError redacts credentials and truncates to 200 bytes.
func SanitizeError(err string) string {
	return truncateString(RedactCredentials(err), 200)
}

var sensitiveKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"api_key":       true,
	"apikey":        true,
	"secret":        true,
	"password":      true,
	"authorization": true,
	"auth_header":   true,
	"cookie":        true,
}

// SanitizeValue masks value when key names a secret and redacts embedded
// credentials otherwise.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	return RedactCredentials(value)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
