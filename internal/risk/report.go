// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package risk

import (
	"sort"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// TopRisk is one row of the report's top list.
type TopRisk struct {
	DiscoveryID string                 `json:"discovery_id"`
	ToolID      string                 `json:"tool_id"`
	ToolName    string                 `json:"tool_name"`
	Population  string                 `json:"population"`
	RiskScore   float64                `json:"risk_score"`
	Severity    models.Severity        `json:"severity"`
	Status      models.DiscoveryStatus `json:"status"`
	SLADueBy    time.Time              `json:"sla_due_by"`
}

// Report is the aggregated risk picture for a tenant.
type Report struct {
	TenantID                string                  `json:"tenant_id"`
	GeneratedAt             time.Time               `json:"generated_at"`
	TotalActive             int                     `json:"total_active"`
	BySeverity              map[models.Severity]int `json:"by_severity"`
	EstimatedBreachCostUSD  float64                 `json:"estimated_breach_cost_usd"`
	CredentialIndicatorSeen int                     `json:"credential_indicator_seen"`
	SLABreached             int                     `json:"sla_breached"`
	TopRisks                []TopRisk               `json:"top_risks"`
}

// Report aggregates the non-terminal discoveries of one tenant. Discoveries
// whose stored score is stale are re-assessed first so the report never shows
// a severity that disagrees with the inputs.
func (a *Assessor) Report(tenantID string, discoveries []models.Discovery, now time.Time) Report {
	rep := Report{
		TenantID:    tenantID,
		GeneratedAt: now,
		BySeverity:  make(map[models.Severity]int, len(models.AllSeverities)),
		TopRisks:    []TopRisk{},
	}
	for _, s := range models.AllSeverities {
		rep.BySeverity[s] = 0
	}

	active := make([]models.Discovery, 0, len(discoveries))
	for i := range discoveries {
		d := discoveries[i]
		if d.Status.IsTerminal() {
			continue
		}
		if !d.ScoreFresh() {
			d = a.Assess(d, now)
		}
		active = append(active, d)
	}

	for i := range active {
		d := &active[i]
		rep.BySeverity[d.Severity]++
		rep.EstimatedBreachCostUSD += a.breachCost(d.Severity)
		if d.CredentialIndicator {
			rep.CredentialIndicatorSeen++
		}
		if now.After(a.slaDue(d)) {
			rep.SLABreached++
		}
	}
	rep.TotalActive = len(active)

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].RiskScore != active[j].RiskScore {
			return active[i].RiskScore > active[j].RiskScore
		}
		return active[i].ID < active[j].ID
	})
	limit := a.cfg.TopRisks
	if limit > len(active) {
		limit = len(active)
	}
	for _, d := range active[:limit] {
		rep.TopRisks = append(rep.TopRisks, TopRisk{
			DiscoveryID: d.ID,
			ToolID:      d.ToolID,
			ToolName:    d.ToolName,
			Population:  d.Population,
			RiskScore:   d.RiskScore,
			Severity:    d.Severity,
			Status:      d.Status,
			SLADueBy:    a.slaDue(&d),
		})
	}
	return rep
}

// slaDue measures the SLA from first detection.
func (a *Assessor) slaDue(d *models.Discovery) time.Time {
	return d.FirstSeen.Add(a.SLA(d.Severity))
}

func (a *Assessor) breachCost(sev models.Severity) float64 {
	switch sev {
	case models.SeverityCritical:
		return a.cfg.BreachCost.Critical
	case models.SeverityHigh:
		return a.cfg.BreachCost.High
	case models.SeverityMedium:
		return a.cfg.BreachCost.Medium
	default:
		return a.cfg.BreachCost.Low
	}
}
