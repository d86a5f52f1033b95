// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package upstream contains HTTP adapters for the external collaborators:

  - MetadataClient: network metadata collector (scan.MetadataSource)
  - GovernanceClient: policy evaluator
  - CatalogClient: governed-alternative catalog (migration.Catalog)
  - ApprovalClient: approval workflow (migration.Approvals)

Every call goes through the same pipeline: client-side rate limit, per-call
timeout, circuit breaker, and exponential backoff retry for transport errors,
429 and 5xx responses. Anything that still fails is returned as a
*models.UpstreamUnavailableError so callers can leave the entity they were
working on in its last stable state and retry later.

Observation payloads may carry an Authorization header value for credential
classification. It is decoded into models.RawObservation.AuthHeader and
never logged.
*/
package upstream
