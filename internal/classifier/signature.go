// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package classifier

import (
	"fmt"
	"math"
	"strings"
)

// Wildcard is the single-label wildcard token.
const Wildcard = "*"

// maxLabelLen is the DNS limit for one label.
const maxLabelLen = 63

// maxToolIDLen bounds tool ids; they become part of storage keys.
const maxToolIDLen = 64

// Signature maps a hostname pattern to an AI tool and its default risk hints.
type Signature struct {
	Pattern  string `koanf:"pattern" json:"pattern" validate:"required"`
	ToolID   string `koanf:"tool_id" json:"tool_id" validate:"required"`
	ToolName string `koanf:"tool_name" json:"tool_name"`
	Provider string `koanf:"provider" json:"provider"`
	// Category is a dotted taxonomy such as "llm.chat" or "image.generation".
	Category string `koanf:"category" json:"category"`

	DataSensitivity    float64 `koanf:"data_sensitivity" json:"data_sensitivity" validate:"gte=0,lte=1"`
	ComplianceExposure float64 `koanf:"compliance_exposure" json:"compliance_exposure" validate:"gte=0,lte=1"`
}

// labels returns the pattern's labels, lowercased.
func (s Signature) labels() []string {
	return strings.Split(normalizePattern(s.Pattern), ".")
}

func normalizePattern(p string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(p)), ".")
}

// check reports the first problem with s, or "" when s is usable.
func (s Signature) check() string {
	p := normalizePattern(s.Pattern)
	if p == "" {
		return "pattern is empty"
	}
	if s.ToolID == "" {
		return "tool_id is empty"
	}
	if !validToolID(s.ToolID) {
		return fmt.Sprintf("tool_id %q must be 1-%d of [A-Za-z0-9._-] starting with a letter or digit", s.ToolID, maxToolIDLen)
	}
	if !inUnit(s.DataSensitivity) {
		return fmt.Sprintf("data_sensitivity %v outside [0,1]", s.DataSensitivity)
	}
	if !inUnit(s.ComplianceExposure) {
		return fmt.Sprintf("compliance_exposure %v outside [0,1]", s.ComplianceExposure)
	}

	labels := strings.Split(p, ".")
	if len(labels) < 2 {
		return "pattern needs at least two labels"
	}
	if labels[len(labels)-1] == Wildcard {
		return "wildcard not allowed in the top-level label"
	}
	for _, l := range labels {
		if l == Wildcard {
			continue
		}
		if !validLabel(l) {
			return fmt.Sprintf("invalid label %q", l)
		}
	}
	return ""
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// validLabel accepts LDH labels plus underscore, which shows up in service
// records. Wildcards embedded in a label ("api*") are rejected here.
func validLabel(l string) bool {
	if l == "" || len(l) > maxLabelLen {
		return false
	}
	if l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func validToolID(id string) bool {
	if id == "" || len(id) > maxToolIDLen || !isAlnum(id[0]) {
		return false
	}
	for i := 1; i < len(id); i++ {
		c := id[i]
		if !isAlnum(c) && c != '.' && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
