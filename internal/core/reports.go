// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Dashboard period bounds, in days.
const (
	DefaultDashboardDays = 30
	MaxDashboardDays     = 365

	dashboardTopTools = 10
)

// RiskReport aggregates the tenant's open discoveries.
func (s *Service) RiskReport(ctx context.Context, tenantID string) (risk.Report, error) {
	if err := requireTenant(tenantID); err != nil {
		return risk.Report{}, err
	}
	var all []models.Discovery
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		all, err = tx.Discoveries(tenantID)
		return err
	})
	if err != nil {
		return risk.Report{}, err
	}
	rep := s.assessor.Report(tenantID, all, s.now())
	metrics.SetSeverityGauges(tenantID, rep.BySeverity)
	return rep, nil
}

// Dashboard summarises the trailing days of activity. days <= 0 means the
// default period.
func (s *Service) Dashboard(ctx context.Context, tenantID string, days int) (models.Dashboard, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.Dashboard{}, err
	}
	if days <= 0 {
		days = DefaultDashboardDays
	}
	if days > MaxDashboardDays {
		return models.Dashboard{}, &models.ValidationError{Field: "days", Message: "must be at most 365"}
	}

	var (
		discoveries []models.Discovery
		plans       []models.MigrationPlan
	)
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		if discoveries, err = tx.Discoveries(tenantID); err != nil {
			return err
		}
		plans, err = tx.Plans(tenantID)
		return err
	})
	if err != nil {
		return models.Dashboard{}, err
	}
	return BuildDashboard(s.assessor, tenantID, discoveries, plans, days, s.now()), nil
}

// BuildDashboard computes the dashboard from a snapshot. A discovery is in
// the period when it was seen at or after the period start; a plan when it
// was created at or after it. Trend counts come from window contributions
// and so lose per-day detail once windows are archived.
func BuildDashboard(a *risk.Assessor, tenantID string, discoveries []models.Discovery, plans []models.MigrationPlan, days int, now time.Time) models.Dashboard {
	end := now.UTC()
	start := end.AddDate(0, 0, -days)
	dash := models.Dashboard{
		TenantID:    tenantID,
		PeriodDays:  days,
		PeriodStart: start,
		PeriodEnd:   end,
		GeneratedAt: end,
		BySeverity:  make(map[models.Severity]int, len(models.AllSeverities)),
		ByStatus:    make(map[models.DiscoveryStatus]int),
		TopTools:    []models.UsageMetric{},
	}
	for _, sev := range models.AllSeverities {
		dash.BySeverity[sev] = 0
	}

	inPeriod := make([]models.Discovery, 0, len(discoveries))
	for i := range discoveries {
		if !discoveries[i].LastSeen.Before(start) {
			inPeriod = append(inPeriod, discoveries[i])
		}
	}

	populations := make(map[string]struct{})
	tools := make(map[string]*models.UsageMetric)
	for i := range inPeriod {
		d := &inPeriod[i]
		dash.TotalDiscoveries++
		dash.BySeverity[d.Severity]++
		dash.ByStatus[d.Status]++
		if !d.Status.IsTerminal() {
			populations[d.Population] = struct{}{}
		}

		u, ok := tools[d.ToolID]
		if !ok {
			u = &models.UsageMetric{
				TenantID:          tenantID,
				ToolID:            d.ToolID,
				ToolName:          d.ToolName,
				PeriodStart:       start,
				PeriodEnd:         end,
				SeverityHistogram: make(map[models.Severity]int),
			}
			tools[d.ToolID] = u
		}
		u.DiscoveryCount++
		u.SeverityHistogram[d.Severity]++
		for _, w := range d.Windows {
			if !w.End.Before(start) {
				u.TotalFrequency += w.Count
			}
		}
	}
	dash.ActivePopulations = len(populations)

	// Breach cost follows the risk report over the open discoveries in period.
	dash.EstimatedBreachCostUSD = a.Report(tenantID, inPeriod, end).EstimatedBreachCostUSD

	for _, u := range tools {
		dash.TopTools = append(dash.TopTools, *u)
	}
	sort.Slice(dash.TopTools, func(i, j int) bool {
		if dash.TopTools[i].TotalFrequency != dash.TopTools[j].TotalFrequency {
			return dash.TopTools[i].TotalFrequency > dash.TopTools[j].TotalFrequency
		}
		return dash.TopTools[i].ToolID < dash.TopTools[j].ToolID
	})
	if len(dash.TopTools) > dashboardTopTools {
		dash.TopTools = dash.TopTools[:dashboardTopTools]
	}

	for i := range plans {
		p := &plans[i]
		if p.CreatedAt.Before(start) {
			continue
		}
		switch p.Status {
		case models.PlanCompleted:
			dash.Migrations.Completed++
		case models.PlanExpired:
			dash.Migrations.Expired++
		case models.PlanRejected:
			dash.Migrations.Rejected++
		default:
			dash.Migrations.Active++
		}
	}

	dash.Trend = trend(inPeriod, start, end)
	return dash
}

// trend buckets window observation counts by the UTC day the window starts.
// Every day of the period is present, including empty ones.
func trend(discoveries []models.Discovery, start, end time.Time) []models.TrendPoint {
	const layout = "2006-01-02"
	counts := make(map[string]int64)
	for i := range discoveries {
		for _, w := range discoveries[i].Windows {
			if w.Start.Before(start) || !w.Start.Before(end) {
				continue
			}
			counts[w.Start.UTC().Format(layout)] += w.Count
		}
	}

	first := start.Truncate(24 * time.Hour)
	var out []models.TrendPoint
	for day := first; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(layout)
		out = append(out, models.TrendPoint{Date: key, Count: counts[key]})
	}
	return out
}
