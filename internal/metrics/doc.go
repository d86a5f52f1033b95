// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Scan Metrics:
  - shadowscan_scans_total: Scan runs (counter)
    Labels: outcome (complete, partial, conflict, error)
  - shadowscan_scan_duration_seconds: Scan latency (histogram)
  - shadowscan_observations_total: Observations processed (counter)
    Labels: result (matched, unmatched, skipped)
  - shadowscan_discoveries_upserted_total: Discovery writes from scans (counter)
    Labels: kind (created, updated)
  - shadowscan_discoveries_active: Active discoveries (gauge)
    Labels: tenant, severity

Lifecycle Metrics:
  - shadowscan_discovery_transitions_total (counter), labels: from, to
  - shadowscan_plan_transitions_total (counter), labels: from, to
  - shadowscan_sweep_expirations_total (counter)
  - shadowscan_expiry_races_total (counter)

Upstream Metrics:
  - shadowscan_upstream_requests_total (counter), labels: service, outcome
  - shadowscan_upstream_duration_seconds (histogram), labels: service
  - circuit_breaker_state (gauge), labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_transitions_total (counter), labels: name, from, to

Event Metrics:
  - shadowscan_events_published_total (counter), labels: event_type
  - shadowscan_event_publish_failures_total (counter)

The store package registers its own transaction and outbox collectors under
shadowscan_store_*.

API Metrics:
  - api_requests_total (counter), labels: method, endpoint, status_code
  - api_request_duration_seconds (histogram), labels: method, endpoint
  - api_active_requests (gauge)
  - websocket_connections_active (gauge)
  - websocket_messages_sent_total (counter)

# Usage

	start := time.Now()
	metrics.TrackActiveRequest(true)
	defer metrics.TrackActiveRequest(false)
	// ... handle request ...
	metrics.RecordAPIRequest(r.Method, pattern, strconv.Itoa(status), time.Since(start))

# Testing

Tests read collector values with prometheus/testutil and compare deltas, as
collectors are process-global.
*/
package metrics
