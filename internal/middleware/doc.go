// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package middleware provides the HTTP middleware shared by the Shadowscan API.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled by
    chi route pattern
  - Compression: gzip for clients sending Accept-Encoding: gzip

All three are chi-compatible (func(http.Handler) http.Handler). The router in
internal/api applies them in this order:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
configured in the router.
*/
package middleware
