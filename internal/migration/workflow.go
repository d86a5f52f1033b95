// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Catalog returns governed alternatives for a shadow tool.
type Catalog interface {
	Alternatives(ctx context.Context, tenantID, toolID, category string) ([]models.Alternative, error)
}

// Approvals submits a plan for approval and returns an opaque reference.
// The decision arrives later through Approve or Reject.
type Approvals interface {
	RequestApproval(ctx context.Context, plan models.MigrationPlan) (string, error)
}

// Workflow runs the migration plan state machine against the store.
type Workflow struct {
	cfg       Config
	repo      store.Repository
	catalog   Catalog
	approvals Approvals
	assessor  *risk.Assessor
	locks     *lifecycle.Locks
	now       func() time.Time
}

// NewWorkflow validates cfg and wires a Workflow. locks may be shared with
// other writers of the same entities; nil gets a private table.
func NewWorkflow(cfg Config, repo store.Repository, catalog Catalog, approvals Approvals, assessor *risk.Assessor, locks *lifecycle.Locks) (*Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if locks == nil {
		locks = lifecycle.NewLocks()
	}
	return &Workflow{
		cfg:       cfg,
		repo:      repo,
		catalog:   catalog,
		approvals: approvals,
		assessor:  assessor,
		locks:     locks,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Config returns the workflow settings.
func (w *Workflow) Config() Config {
	return w.cfg
}

func correlationID(ctx context.Context) string {
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		return id
	}
	return logging.GenerateCorrelationID()
}

// Propose creates an approval-pending plan for a notified discovery and
// moves the discovery to migrating in the same commit.
func (w *Workflow) Propose(ctx context.Context, tenantID, discoveryID string) (models.MigrationPlan, error) {
	release, err := w.locks.TryLock("discovery", tenantID, discoveryID)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	defer release()

	var d models.Discovery
	err = w.repo.View(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, discoveryID)
		if err != nil {
			return err
		}
		active, err := tx.ActivePlan(tenantID, discoveryID)
		if err != nil {
			return err
		}
		if active != nil {
			return &models.ConflictError{
				Entity: "discovery", ID: discoveryID,
				Reason: fmt.Sprintf("migration plan %s is still %s", active.ID, active.Status),
			}
		}
		d = *cur
		return nil
	})
	if err != nil {
		return models.MigrationPlan{}, err
	}
	if !lifecycle.CanTransition(d.Status, models.StatusMigrating) {
		return models.MigrationPlan{}, &models.TransitionError{
			Entity: "discovery", ID: d.ID, From: string(d.Status), To: string(models.StatusMigrating),
			Reason: "a migration can only start from notified",
		}
	}

	now := w.now()
	if !d.ScoreFresh() {
		d = w.assessor.Assess(d, now)
	}

	candidates, err := w.catalog.Alternatives(ctx, tenantID, d.ToolID, d.Category)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	alt, ok := SelectAlternative(d.Category, candidates)
	if !ok {
		return models.MigrationPlan{}, &models.NotFoundError{Entity: "alternative", ID: d.ToolID}
	}

	plan := models.MigrationPlan{
		ID:          uuid.NewString(),
		DiscoveryID: d.ID,
		TenantID:    d.TenantID,
		ToolID:      d.ToolID,
		Alternative: alt,
		Status:      models.PlanProposed,
		Severity:    d.Severity,
		CreatedAt:   now,
		ExpiresAt:   now.Add(w.cfg.Horizon()),
		DueBy:       now.Add(w.assessor.SLA(d.Severity)),
		UpdatedAt:   now,
		Steps:       defaultSteps(),
	}

	ref, err := w.approvals.RequestApproval(ctx, plan)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	plan.ApprovalRef = ref

	corr := correlationID(ctx)
	trig := lifecycle.Trigger{CorrelationID: corr, Now: now}
	events := []models.Event{lifecycle.Proposed(plan, corr, now)}

	pending, evs, err := lifecycle.TransitionPlan(plan, models.PlanApprovalPending, trig)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	events = append(events, evs...)

	var moved models.Discovery
	err = w.repo.Update(ctx, func(tx *store.Txn) error {
		cur, err := tx.Discovery(tenantID, discoveryID)
		if err != nil {
			return err
		}
		active, err := tx.ActivePlan(tenantID, discoveryID)
		if err != nil {
			return err
		}
		if active != nil {
			return &models.ConflictError{
				Entity: "discovery", ID: discoveryID,
				Reason: fmt.Sprintf("migration plan %s is still %s", active.ID, active.Status),
			}
		}
		dtrig := trig
		dtrig.Plan = &pending
		if !cur.ScoreFresh() {
			*cur = w.assessor.Assess(*cur, now)
		}
		next, devs, err := lifecycle.Transition(*cur, models.StatusMigrating, dtrig)
		if err != nil {
			return err
		}
		if err := tx.PutPlan(&pending); err != nil {
			return err
		}
		if err := tx.PutDiscovery(&next); err != nil {
			return err
		}
		moved = next
		return tx.Emit(append(events, devs...)...)
	})
	if err != nil {
		return models.MigrationPlan{}, err
	}

	metrics.RecordPlanTransition(models.PlanProposed, models.PlanApprovalPending)
	metrics.RecordDiscoveryTransition(models.StatusNotified, models.StatusMigrating)
	logging.CtxInfo(ctx).
		Str("tenant_id", tenantID).
		Str("discovery_id", moved.ID).
		Str("plan_id", pending.ID).
		Str("alternative", alt.ID).
		Time("expires_at", pending.ExpiresAt).
		Msg("Migration plan proposed")

	return pending, nil
}

func defaultSteps() []models.PlanStep {
	steps := make([]models.PlanStep, len(models.DefaultStepNames))
	for i, name := range models.DefaultStepNames {
		steps[i] = models.PlanStep{Name: name, Status: models.StepPending}
	}
	return steps
}

// Approve records a positive approval decision.
func (w *Workflow) Approve(ctx context.Context, tenantID, planID, reference string) (models.MigrationPlan, error) {
	return w.move(ctx, tenantID, planID, models.PlanApproved, "", func(_ *store.Txn, p *models.MigrationPlan, _ lifecycle.Trigger) ([]models.Event, error) {
		if reference != "" && p.ApprovalRef != "" && reference != p.ApprovalRef {
			return nil, &models.ValidationError{Field: "reference", Message: "does not match the plan's approval reference"}
		}
		return nil, nil
	})
}

// Reject records a negative approval decision. The discovery stays in
// migrating until Rollback.
func (w *Workflow) Reject(ctx context.Context, tenantID, planID, note string) (models.MigrationPlan, error) {
	return w.move(ctx, tenantID, planID, models.PlanRejected, note, nil)
}

// Start marks an approved plan as in progress.
func (w *Workflow) Start(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	return w.move(ctx, tenantID, planID, models.PlanInProgress, "", nil)
}

// Complete finishes an in-progress plan and moves its discovery to migrated.
func (w *Workflow) Complete(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	return w.move(ctx, tenantID, planID, models.PlanCompleted, "", func(tx *store.Txn, p *models.MigrationPlan, trig lifecycle.Trigger) ([]models.Event, error) {
		d, err := tx.Discovery(p.TenantID, p.DiscoveryID)
		if err != nil {
			return nil, err
		}
		trig.Plan = p
		next, evs, err := lifecycle.Transition(*d, models.StatusMigrated, trig)
		if err != nil {
			return nil, err
		}
		if err := tx.PutDiscovery(&next); err != nil {
			return nil, err
		}
		metrics.RecordDiscoveryTransition(d.Status, next.Status)
		return evs, nil
	})
}

// afterMove runs inside the plan transaction once the plan transition has
// been computed; it may write related entities and return extra events.
type afterMove func(tx *store.Txn, next *models.MigrationPlan, trig lifecycle.Trigger) ([]models.Event, error)

// move applies one plan transition under the plan's lock. A plan that is
// already terminal wins: the ExpiryRaceError is logged and swallowed and the
// stored plan is returned unchanged.
func (w *Workflow) move(ctx context.Context, tenantID, planID string, to models.PlanStatus, note string, after afterMove) (models.MigrationPlan, error) {
	release, err := w.locks.TryLock("plan", tenantID, planID)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	defer release()

	trig := lifecycle.Trigger{CorrelationID: correlationID(ctx), Now: w.now(), Note: note}
	var (
		result models.MigrationPlan
		from   models.PlanStatus
		race   *models.ExpiryRaceError
	)
	err = w.repo.Update(ctx, func(tx *store.Txn) error {
		p, err := tx.Plan(tenantID, planID)
		if err != nil {
			return err
		}
		from = p.Status
		next, events, err := lifecycle.TransitionPlan(*p, to, trig)
		if errors.As(err, &race) {
			result = *p
			return nil
		}
		if err != nil {
			return err
		}
		if after != nil {
			extra, err := after(tx, &next, trig)
			if err != nil {
				return err
			}
			events = append(events, extra...)
		}
		if err := tx.PutPlan(&next); err != nil {
			return err
		}
		result = next
		return tx.Emit(events...)
	})
	if err != nil {
		return models.MigrationPlan{}, err
	}

	if race != nil {
		metrics.ExpiryRaces.Inc()
		logging.CtxInfo(ctx).
			Str("tenant_id", tenantID).
			Str("plan_id", planID).
			Str("status", string(race.Current)).
			Str("attempted", string(race.Attempted)).
			Msg("Plan already terminal, transition ignored")
		return result, nil
	}

	metrics.RecordPlanTransition(from, to)
	logging.CtxInfo(ctx).
		Str("tenant_id", tenantID).
		Str("plan_id", planID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Migration plan transition")
	return result, nil
}

// CompleteStep marks one checklist step done on an approved or in-progress
// plan. Completing a step twice is a no-op.
func (w *Workflow) CompleteStep(ctx context.Context, tenantID, planID, step string) (models.MigrationPlan, error) {
	release, err := w.locks.TryLock("plan", tenantID, planID)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	defer release()

	var result models.MigrationPlan
	err = w.repo.Update(ctx, func(tx *store.Txn) error {
		p, err := tx.Plan(tenantID, planID)
		if err != nil {
			return err
		}
		next, changed, err := lifecycle.CompleteStep(*p, step, w.now())
		if err != nil {
			return err
		}
		if changed {
			if err := tx.PutPlan(&next); err != nil {
				return err
			}
		}
		result = next
		return nil
	})
	return result, err
}

// Get returns a plan by id.
func (w *Workflow) Get(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	var p models.MigrationPlan
	err := w.repo.View(ctx, func(tx *store.Txn) error {
		cur, err := tx.Plan(tenantID, planID)
		if err != nil {
			return err
		}
		p = *cur
		return nil
	})
	return p, err
}

// Sweep expires every non-terminal plan whose expires_at is at or before
// now. Discoveries are left in migrating. Plans locked by an in-flight
// callback are skipped until the next run. It returns how many plans were
// expired.
func (w *Workflow) Sweep(ctx context.Context, now time.Time) (int, error) {
	var refs []store.PlanRef
	err := w.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		refs, err = tx.ExpiredPlans(now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list expired plans: %w", err)
	}

	corr := correlationID(ctx)
	expired := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		ok, err := w.expire(ctx, ref, now, corr)
		if err != nil {
			logging.CtxWarn(ctx).Err(err).
				Str("tenant_id", ref.TenantID).
				Str("plan_id", ref.PlanID).
				Msg("Plan expiry failed, will retry next sweep")
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		metrics.SweepExpirations.Add(float64(expired))
		logging.CtxInfo(ctx).Int("expired", expired).Int("candidates", len(refs)).Msg("Expiry sweep finished")
	}
	return expired, nil
}

func (w *Workflow) expire(ctx context.Context, ref store.PlanRef, now time.Time, corr string) (bool, error) {
	release, err := w.locks.TryLock("plan", ref.TenantID, ref.PlanID)
	if err != nil {
		logging.CtxDebug(ctx).Str("plan_id", ref.PlanID).Msg("Plan busy, expiry deferred")
		return false, nil
	}
	defer release()

	var from models.PlanStatus
	done := false
	err = w.repo.Update(ctx, func(tx *store.Txn) error {
		p, err := tx.Plan(ref.TenantID, ref.PlanID)
		if err != nil {
			return err
		}
		// Status is re-read here; a callback may have finished the plan.
		if !p.PastExpiry(now) {
			return nil
		}
		from = p.Status
		next, events, err := lifecycle.TransitionPlan(*p, models.PlanExpired, lifecycle.Trigger{
			CorrelationID: corr,
			Now:           now,
			Note:          "expired without completion",
		})
		var race *models.ExpiryRaceError
		if errors.As(err, &race) {
			metrics.ExpiryRaces.Inc()
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.PutPlan(&next); err != nil {
			return err
		}
		done = true
		return tx.Emit(events...)
	})
	if err != nil {
		return false, err
	}
	if done {
		metrics.RecordPlanTransition(from, models.PlanExpired)
	}
	return done, nil
}

// Rollback routes a migrating discovery whose latest plan expired or was
// rejected back to assessed, so a fresh plan can be proposed.
func (w *Workflow) Rollback(ctx context.Context, tenantID, discoveryID, note string) (models.Discovery, error) {
	release, err := w.locks.TryLock("discovery", tenantID, discoveryID)
	if err != nil {
		return models.Discovery{}, err
	}
	defer release()

	var result models.Discovery
	err = w.repo.Update(ctx, func(tx *store.Txn) error {
		d, err := tx.Discovery(tenantID, discoveryID)
		if err != nil {
			return err
		}
		plan, err := tx.LatestPlan(tenantID, discoveryID)
		if err != nil {
			return err
		}
		next, events, err := lifecycle.Transition(*d, models.StatusAssessed, lifecycle.Trigger{
			CorrelationID: correlationID(ctx),
			Now:           w.now(),
			Note:          note,
			Plan:          plan,
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

	metrics.RecordDiscoveryTransition(models.StatusMigrating, models.StatusAssessed)
	logging.CtxInfo(ctx).
		Str("tenant_id", tenantID).
		Str("discovery_id", discoveryID).
		Str("note", result.StatusNote).
		Msg("Migration rolled back")
	return result, nil
}
