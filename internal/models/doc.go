// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package models defines the data structures shared across Shadowscan.

It is the single source of truth for the shape of everything the detection,
scoring and migration packages exchange, and for what gets persisted or
published.

Key Components:

  - RawObservation / Observation: network metadata before and after
    classification. RawObservation may carry a transient Authorization header
    value; it is never serialized and the classifier drops it before an
    Observation is produced.
  - Discovery: one (tenant, tool, source population) finding with its risk
    score, severity and lifecycle status.
  - ScanResult: immutable record of one aggregation run.
  - MigrationPlan: time-bounded move of a Discovery onto a governed alternative.
  - UsageMetric: derived, recomputable dashboard projection.
  - Event: lifecycle notification published to the event sink.
  - APIResponse: standard HTTP response envelope.

Error taxonomy (errors.go):

  - ConfigurationError: fatal at load time
  - ConflictError: duplicate active plan or concurrent writer
  - NotFoundError: unknown discovery or plan id
  - UpstreamUnavailableError: collaborator failed or timed out, retryable
  - ExpiryRaceError: sweep and callback contended, internal only
  - TransitionError: edge not allowed by the state machine

Every error type matches a sentinel through errors.Is, so callers never need
to type-assert:

	if errors.Is(err, models.ErrConflict) {
	    // 409
	}
*/
package models
