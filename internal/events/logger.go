// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/shadowscan/internal/logging"
)

// NewLogger returns a Watermill logger that writes through zerolog.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger().With("component", "events"))
}
