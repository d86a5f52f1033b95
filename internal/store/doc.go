// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package store persists discoveries, migration plans and scan results in
// BadgerDB, together with a transactional outbox for lifecycle events.
//
// # Transactions
//
// Every state change runs inside Store.Update. Entity writes and the events
// they produce are committed in the same Badger transaction:
//
//	Update(fn) -> PutDiscovery / PutPlan / Emit -> commit
//	                                                  |
//	                                   outbox:pending:<seq> -> Relay -> sink
//
// Badger transactions are optimistic. Two transactions that read and write
// the same key cannot both commit; the loser gets badger.ErrConflict, which
// Update reports as a *models.ConflictError naming the first entity the
// transaction wrote. This is the per-entity single-writer guarantee the
// lifecycle relies on.
//
// # Key Layout
//
//	disc:<tenant>:<id>                      Discovery
//	dkey:<tenant>:<tool>:<population>       Discovery id by grouping key
//	plan:<tenant>:<id>                      MigrationPlan
//	aplan:<tenant>:<discovery>              id of the active plan, if any
//	lplan:<tenant>:<discovery>              id of the latest plan
//	pexp:<expires>:<tenant>:<plan>          expiry index of active plans
//	scan:<tenant>:<started>:<id>            ScanResult
//	win:<tenant>:<start>                    recorded scan window
//	outbox:pending:<seq>                    unpublished event
//	outbox:sent:<event id>                  published marker (TTL)
//
// Timestamps in keys are zero-padded unix nanoseconds so lexical order is
// time order. Tenant ids must not contain ':'.
package store
