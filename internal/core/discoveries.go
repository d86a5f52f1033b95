// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Paging limits for ListDiscoveries.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// dismissNote is recorded on a plan rejected because its discovery was dismissed.
const dismissNote = "discovery dismissed"

// DiscoveryPage is one page of ListDiscoveries.
type DiscoveryPage struct {
	Items  []models.Discovery `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ListDiscoveries returns the tenant's discoveries matching f, newest
// activity first.
func (s *Service) ListDiscoveries(ctx context.Context, tenantID string, f models.DiscoveryFilter) (DiscoveryPage, error) {
	if err := requireTenant(tenantID); err != nil {
		return DiscoveryPage{}, err
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var all []models.Discovery
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		all, err = tx.Discoveries(tenantID)
		return err
	})
	if err != nil {
		return DiscoveryPage{}, err
	}

	matched := all[:0]
	for i := range all {
		if f.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].LastSeen.Equal(matched[j].LastSeen) {
			return matched[i].LastSeen.After(matched[j].LastSeen)
		}
		return matched[i].ID < matched[j].ID
	})

	page := DiscoveryPage{Total: len(matched), Limit: f.Limit, Offset: f.Offset, Items: []models.Discovery{}}
	if f.Offset < len(matched) {
		end := min(f.Offset+f.Limit, len(matched))
		page.Items = matched[f.Offset:end]
	}
	return page, nil
}

// GetDiscovery returns one discovery.
func (s *Service) GetDiscovery(ctx context.Context, tenantID, id string) (models.Discovery, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.Discovery{}, err
	}
	var d models.Discovery
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, id)
		if err != nil {
			return err
		}
		d = *cur
		return nil
	})
	return d, err
}

// Assess asks the governance evaluator for inputs and an override, rescores
// the discovery, and moves a detected discovery to assessed. An evaluator
// failure leaves the discovery untouched. Without an evaluator the current
// inputs are rescored.
func (s *Service) Assess(ctx context.Context, tenantID, id string) (models.Discovery, error) {
	ctx, corr := correlationID(ctx)
	release, err := s.locks.TryLock("discovery", tenantID, id)
	if err != nil {
		return models.Discovery{}, err
	}
	defer release()

	var eval *models.Evaluation
	if s.evaluator != nil {
		cur, err := s.GetDiscovery(ctx, tenantID, id)
		if err != nil {
			return models.Discovery{}, err
		}
		if cur.Status.IsTerminal() {
			return models.Discovery{}, &models.TransitionError{
				Entity: "discovery", ID: id, From: string(cur.Status), To: string(models.StatusAssessed),
				Reason: "discovery is closed",
			}
		}
		ev, err := s.evaluator.Evaluate(ctx, models.NewEvaluationRequest(&cur))
		if err != nil {
			return models.Discovery{}, err
		}
		eval = &ev
	}

	var result models.Discovery
	var from models.DiscoveryStatus
	err = s.repo.Update(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, id)
		if err != nil {
			return err
		}
		d := *cur
		from = d.Status
		if d.Status.IsTerminal() {
			return &models.TransitionError{
				Entity: "discovery", ID: id, From: string(d.Status), To: string(models.StatusAssessed),
				Reason: "discovery is closed",
			}
		}

		now := s.now()
		if eval != nil {
			applyEvaluation(&d, eval, now)
		}
		d = s.assessor.Assess(d, now)

		var events []models.Event
		if d.Status == models.StatusDetected {
			d, events, err = lifecycle.Transition(d, models.StatusAssessed, lifecycle.Trigger{CorrelationID: corr, Now: now})
			if err != nil {
				return err
			}
		}
		d.UpdatedAt = now
		if err := tx.PutDiscovery(&d); err != nil {
			return err
		}
		result = d
		return tx.Emit(events...)
	})
	if err != nil {
		return models.Discovery{}, err
	}

	if from != result.Status {
		metrics.RecordDiscoveryTransition(from, result.Status)
		s.onCommit()
	}
	logging.CtxInfo(ctx).
		Str("tenant_id", tenantID).
		Str("discovery_id", id).
		Float64("risk_score", result.RiskScore).
		Str("severity", string(result.Severity)).
		Msg("Discovery assessed")
	return result, nil
}

// applyEvaluation folds a governance verdict into d. Inputs.UpdatedAt moves
// only when a value actually changes.
func applyEvaluation(d *models.Discovery, ev *models.Evaluation, now time.Time) {
	changed := false
	if ev.DataSensitivity != nil && *ev.DataSensitivity != d.Inputs.DataSensitivity {
		d.Inputs.DataSensitivity = *ev.DataSensitivity
		changed = true
	}
	if ev.ComplianceExposure != nil && *ev.ComplianceExposure != d.Inputs.ComplianceExposure {
		d.Inputs.ComplianceExposure = *ev.ComplianceExposure
		changed = true
	}
	if ev.DataSensitivity != nil || ev.ComplianceExposure != nil {
		d.Inputs.Source = models.InputSourceGovernance
	}
	if changed {
		d.Inputs.UpdatedAt = now
	}
	d.SeverityOverride = ev.OverrideSeverity
}

// RecordNotification routes an assessed discovery to its stakeholder and
// moves it to notified.
func (s *Service) RecordNotification(ctx context.Context, tenantID, id string) (models.Discovery, error) {
	ctx, corr := correlationID(ctx)
	release, err := s.locks.TryLock("discovery", tenantID, id)
	if err != nil {
		return models.Discovery{}, err
	}
	defer release()

	var result models.Discovery
	err = s.repo.Update(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, id)
		if err != nil {
			return err
		}
		d := *cur
		now := s.now()
		if !d.ScoreFresh() {
			d = s.assessor.Assess(d, now)
		}
		next, events, err := lifecycle.Transition(d, models.StatusNotified, lifecycle.Trigger{
			CorrelationID: corr,
			Now:           now,
			Stakeholder:   risk.Stakeholder(d.Severity),
		})
		if err != nil {
			return err
		}
		if err := tx.PutDiscovery(&next); err != nil {
			return err
		}
		result = next
		return tx.Emit(events...)
	})
	if err != nil {
		return models.Discovery{}, err
	}

	metrics.RecordDiscoveryTransition(models.StatusAssessed, models.StatusNotified)
	s.onCommit()
	logging.CtxInfo(ctx).
		Str("tenant_id", tenantID).
		Str("discovery_id", id).
		Str("stakeholder", result.NotifiedStakeholder).
		Str("severity", string(result.Severity)).
		Msg("Stakeholder notified")
	return result, nil
}

// Dismiss closes a discovery. A migrating discovery's active plan is
// rejected in the same commit.
func (s *Service) Dismiss(ctx context.Context, tenantID, id, note string) (models.Discovery, error) {
	ctx, corr := correlationID(ctx)
	release, err := s.locks.TryLock("discovery", tenantID, id)
	if err != nil {
		return models.Discovery{}, err
	}
	defer release()

	// Hold the plan lock too so a concurrent callback or sweep cannot move
	// the plan between our read and commit.
	var activeID string
	err = s.repo.View(ctx, func(tx *store.Txn) error {
		p, err := tx.ActivePlan(tenantID, id)
		if err != nil || p == nil {
			return err
		}
		activeID = p.ID
		return nil
	})
	if err != nil {
		return models.Discovery{}, err
	}
	if activeID != "" {
		releasePlan, err := s.locks.TryLock("plan", tenantID, activeID)
		if err != nil {
			return models.Discovery{}, err
		}
		defer releasePlan()
	}

	var result models.Discovery
	var from models.DiscoveryStatus
	var rejected *models.MigrationPlan
	var planFrom, planTo models.PlanStatus
	err = s.repo.Update(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, id)
		if err != nil {
			return err
		}
		from = cur.Status
		now := s.now()
		trig := lifecycle.Trigger{CorrelationID: corr, Now: now, Note: note}

		next, events, err := lifecycle.Transition(*cur, models.StatusDismissed, trig)
		if err != nil {
			return err
		}

		active, err := tx.ActivePlan(tenantID, id)
		if err != nil {
			return err
		}
		if active != nil {
			planFrom = active.Status
			// An in-progress plan has no rejected edge; it is closed as expired.
			planTo = models.PlanRejected
			if !lifecycle.CanTransitionPlan(active.Status, planTo) {
				planTo = models.PlanExpired
			}
			plan, planEvents, err := lifecycle.TransitionPlan(*active, planTo, lifecycle.Trigger{
				CorrelationID: corr, Now: now, Note: dismissNote,
			})
			if err != nil {
				return err
			}
			if err := tx.PutPlan(&plan); err != nil {
				return err
			}
			rejected = &plan
			events = append(planEvents, events...)
		}

		if err := tx.PutDiscovery(&next); err != nil {
			return err
		}
		result = next
		return tx.Emit(events...)
	})
	if err != nil {
		return models.Discovery{}, err
	}

	metrics.RecordDiscoveryTransition(from, models.StatusDismissed)
	evt := logging.CtxInfo(ctx).Str("tenant_id", tenantID).Str("discovery_id", id)
	if rejected != nil {
		metrics.RecordPlanTransition(planFrom, planTo)
		evt = evt.Str("plan_id", rejected.ID)
	}
	evt.Msg("Discovery dismissed")
	s.onCommit()
	return result, nil
}
