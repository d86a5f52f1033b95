// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package core is the operation surface of the service. The HTTP API and
// the background jobs call it; it composes the scanner, the risk assessor,
// the discovery lifecycle and the migration workflow over one store.
//
// Every mutating operation commits the entity and its lifecycle events in a
// single store transaction. Writers of the same discovery or plan are
// serialized by a shared lifecycle.Locks table; a busy entity yields a
// *models.ConflictError instead of waiting.
package core
