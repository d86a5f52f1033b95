// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for store operations
var (
	// storeTxnTotal counts transactions by kind and outcome.
	storeTxnTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadowscan_store_txn_total",
		Help: "Total number of store transactions",
	}, []string{"kind", "outcome"})

	// storeTxnLatency measures transaction latency.
	storeTxnLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shadowscan_store_txn_latency_seconds",
		Help:    "Store transaction latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// outboxWritesTotal counts events written to the outbox.
	outboxWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowscan_outbox_writes_total",
		Help: "Total number of events written to the outbox",
	})

	// outboxAcksTotal counts events removed from the outbox after publishing.
	outboxAcksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowscan_outbox_acks_total",
		Help: "Total number of outbox entries acknowledged",
	})

	// outboxPending is the pending outbox size seen by the last Stats call.
	outboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shadowscan_outbox_pending_entries",
		Help: "Current number of unpublished outbox entries",
	})
)

// RecordTxn records one transaction.
func RecordTxn(kind string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeTxnTotal.WithLabelValues(kind, outcome).Inc()
	storeTxnLatency.WithLabelValues(kind).Observe(d.Seconds())
}
