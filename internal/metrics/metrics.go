// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shadowscan/internal/models"
)

var (
	// Scan Metrics
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_scans_total",
			Help: "Total number of scan runs",
		},
		[]string{"outcome"}, // "complete", "partial", "conflict", "error"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shadowscan_scan_duration_seconds",
			Help:    "Duration of scan runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	ObservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_observations_total",
			Help: "Total number of observations processed by scans",
		},
		[]string{"result"}, // "matched", "unmatched", "skipped"
	)

	DiscoveriesUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_discoveries_upserted_total",
			Help: "Total number of discovery creates and updates from scans",
		},
		[]string{"kind"}, // "created", "updated"
	)

	DiscoveriesBySeverity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shadowscan_discoveries_active",
			Help: "Active (non-terminal) discoveries by severity, as of the last report",
		},
		[]string{"tenant", "severity"},
	)

	// Lifecycle Metrics
	DiscoveryTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_discovery_transitions_total",
			Help: "Total number of discovery state transitions",
		},
		[]string{"from", "to"},
	)

	PlanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_plan_transitions_total",
			Help: "Total number of migration plan state transitions",
		},
		[]string{"from", "to"},
	)

	SweepExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowscan_sweep_expirations_total",
			Help: "Total number of plans expired by the sweep",
		},
	)

	ExpiryRaces = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowscan_expiry_races_total",
			Help: "Total number of sweep/callback races resolved in favour of a terminal plan",
		},
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_upstream_requests_total",
			Help: "Total number of upstream collaborator calls",
		},
		[]string{"service", "outcome"}, // outcome: "success", "failure", "rejected"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shadowscan_upstream_duration_seconds",
			Help:    "Upstream call duration in seconds, including retries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	UpstreamCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_upstream_cache_lookups_total",
			Help: "Total number of cached collaborator lookups",
		},
		[]string{"service", "result"}, // result: "hit", "miss"
	)

	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_ingest_events_total",
			Help: "Total number of pushed observation events by outcome",
		},
		[]string{"source", "result"}, // result: "buffered", "unmatched", "duplicate", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_events_published_total",
			Help: "Total number of lifecycle events handed to the event sink",
		},
		[]string{"event_type"},
	)

	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowscan_event_publish_failures_total",
			Help: "Total number of failed event publish attempts",
		},
	)

	FeedDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowscan_feed_dropped_total",
			Help: "Events not delivered to the live feed",
		},
		[]string{"reason"}, // "decode", "no_clients", "queue_full"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)
)

// RecordScan records the outcome of one scan run.
func RecordScan(r models.ScanResult, err error) {
	outcome := "complete"
	switch {
	case errors.Is(err, models.ErrConflict) && r.ID == "":
		outcome = "conflict"
	case r.Partial:
		outcome = "partial"
	case err != nil:
		outcome = "error"
	}
	ScansTotal.WithLabelValues(outcome).Inc()
	if r.ID == "" {
		return
	}
	ScanDuration.Observe(time.Duration(r.DurationMs * int64(time.Millisecond)).Seconds())
	ObservationsTotal.WithLabelValues("matched").Add(float64(r.MatchedCount))
	ObservationsTotal.WithLabelValues("unmatched").Add(float64(r.UnmatchedCount))
	ObservationsTotal.WithLabelValues("skipped").Add(float64(r.SkippedCount))
	DiscoveriesUpserted.WithLabelValues("created").Add(float64(r.DiscoveriesCreated))
	DiscoveriesUpserted.WithLabelValues("updated").Add(float64(r.DiscoveriesUpdated))
}

// RecordDiscoveryTransition records one discovery state change.
func RecordDiscoveryTransition(from, to models.DiscoveryStatus) {
	DiscoveryTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordPlanTransition records one plan state change.
func RecordPlanTransition(from, to models.PlanStatus) {
	PlanTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordUpstream records an upstream call and its outcome.
func RecordUpstream(service, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SetSeverityGauges replaces the active-discovery gauges for a tenant.
func SetSeverityGauges(tenantID string, bySeverity map[models.Severity]int) {
	for _, sev := range models.AllSeverities {
		DiscoveriesBySeverity.WithLabelValues(tenantID, string(sev)).Set(float64(bySeverity[sev]))
	}
}

// RecordBreakerTransition updates the breaker gauge and transition counter.
func RecordBreakerTransition(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
