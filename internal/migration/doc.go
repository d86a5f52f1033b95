// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package migration drives MigrationPlans from proposal to a terminal state.
//
// Propose resolves a governed alternative through the Catalog, requests
// approval through the Approvals collaborator and then commits the plan as
// approval-pending together with the Discovery's notified -> migrating move.
// Both collaborator calls happen before the commit, so a failing or slow
// upstream leaves the Discovery in notified and nothing is written.
//
// Callbacks (Approve, Reject, Start, Complete) and the time-driven Sweep all
// re-read the plan inside their transaction. Whichever reaches a terminal
// state first wins; the loser sees an ExpiryRaceError, which is logged and
// swallowed here and never reaches callers. Completing a plan is the only
// way a Discovery becomes migrated. An expired or rejected plan leaves the
// Discovery in migrating until Rollback routes it back to assessed.
package migration
