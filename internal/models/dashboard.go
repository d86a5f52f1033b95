// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import "time"

// TrendPoint is the observation count for one UTC day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// MigrationStats counts plans by outcome.
type MigrationStats struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
	Rejected  int `json:"rejected"`
}

// Dashboard is the tenant overview for a trailing period.
type Dashboard struct {
	TenantID    string    `json:"tenant_id"`
	PeriodDays  int       `json:"period_days"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalDiscoveries       int                     `json:"total_discoveries"`
	ActivePopulations      int                     `json:"active_populations"`
	BySeverity             map[Severity]int        `json:"by_severity"`
	ByStatus               map[DiscoveryStatus]int `json:"by_status"`
	Migrations             MigrationStats          `json:"migrations"`
	EstimatedBreachCostUSD float64                 `json:"estimated_breach_cost_usd"`
	TopTools               []UsageMetric           `json:"top_tools"`
	Trend                  []TrendPoint            `json:"trend"`
}
