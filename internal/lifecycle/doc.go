// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package lifecycle holds the Discovery and MigrationPlan state machines.
//
// Both machines are pure. A transition takes the current entity and a
// Trigger and returns the updated copy plus the events to publish. Nothing
// here touches storage or the network; the caller commits the entity and its
// events in one transaction (see internal/store), which keeps every
// transition all-or-nothing.
//
// Discovery edges:
//
//	detected -> assessed -> notified -> migrating -> migrated
//	                                        |
//	                                        +-> assessed   (plan expired/rejected)
//	detected | assessed | notified | migrating -> dismissed
//
// migrated and dismissed are terminal. Any other move fails with a
// *models.TransitionError and the input is returned unchanged.
//
// Plan edges:
//
//	proposed -> approval-pending -> approved -> in-progress -> completed
//	proposed | approval-pending | approved  -> rejected
//	any non-terminal                        -> expired
package lifecycle
