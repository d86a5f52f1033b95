// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package api exposes the Shadowscan operations over HTTP using chi.

Every tenant-scoped route lives under /api/v1/tenants/{tenant}. The tenant
segment is validated once by middleware and placed in the logging context,
so handlers never see an invalid tenant ID.

Responses use the models.APIResponse envelope. Domain errors map to status
codes as follows:

	ValidationError, RequestValidationError  400 VALIDATION_ERROR
	NotFoundError                            404 NOT_FOUND
	ConflictError                            409 CONFLICT
	TransitionError                          409 INVALID_TRANSITION
	UpstreamUnavailableError                 503 UPSTREAM_UNAVAILABLE
	anything else                            500 INTERNAL_ERROR

The live event feed is a websocket at /api/v1/tenants/{tenant}/events/ws.
It sits outside the request timeout and compression middleware.

Forward proxies and the browser extension push events to
/api/v1/tenants/{tenant}/ingest/proxy-events and .../extension-events. These
routes answer 202 with a receipt, skip the per-client rate limit, and require
the X-Ingest-Key header when an ingest key is configured (401 otherwise).
*/
package api
