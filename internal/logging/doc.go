// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package logging is the process-wide zerolog logger.
//
// Init configures level, format (json or console) and caller output once at
// startup; until then a JSON info logger on stderr is active. Every entry
// carries service=shadowscan.
//
//	logging.Info().Str("tenant_id", t).Msg("Scan scheduled")
//	logging.CtxWarn(ctx).Err(err).Msg("Governance evaluator unavailable")
//
// # Context
//
// Correlation ids tie a request, the operation it drives and the lifecycle
// events it emits together. ContextWithCorrelationID, ContextWithRequestID
// and ContextWithTenantID attach ids; Ctx and the CtxInfo family read them
// back into the entry.
//
// # Redaction
//
// Observation metadata may contain raw Authorization headers.
// RedactCredentials, SanitizeValue and SanitizeError strip anything
// credential-shaped and are applied by the slog bridge automatically.
//
// # slog bridge
//
// NewSlogLogger adapts zerolog to log/slog for sutureslog and watermill.
package logging
