// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shadowscan/internal/models"
)

var planEdges = map[models.PlanStatus][]models.PlanStatus{
	models.PlanProposed:        {models.PlanApprovalPending, models.PlanRejected, models.PlanExpired},
	models.PlanApprovalPending: {models.PlanApproved, models.PlanRejected, models.PlanExpired},
	models.PlanApproved:        {models.PlanInProgress, models.PlanRejected, models.PlanExpired},
	models.PlanInProgress:      {models.PlanCompleted, models.PlanExpired},
}

var planEventTypes = map[models.PlanStatus]string{
	models.PlanProposed:        models.EventPlanProposed,
	models.PlanApprovalPending: models.EventPlanApprovalPending,
	models.PlanApproved:        models.EventPlanApproved,
	models.PlanInProgress:      models.EventPlanInProgress,
	models.PlanCompleted:       models.EventPlanCompleted,
	models.PlanRejected:        models.EventPlanRejected,
	models.PlanExpired:         models.EventPlanExpired,
}

// CanTransitionPlan reports whether from -> to is an edge of the plan machine.
func CanTransitionPlan(from, to models.PlanStatus) bool {
	for _, s := range planEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Proposed builds the creation event for a new plan.
func Proposed(p models.MigrationPlan, correlationID string, now time.Time) models.Event {
	return newPlanEvent(p, "", models.PlanProposed, correlationID, now)
}

// TransitionPlan applies one plan edge. A plan that is already terminal
// yields a *models.ExpiryRaceError so callers can tell a lost race from a
// bad request; any other illegal edge is a *models.TransitionError.
func TransitionPlan(p models.MigrationPlan, to models.PlanStatus, trig Trigger) (models.MigrationPlan, []models.Event, error) {
	from := p.Status
	if from.IsTerminal() {
		return p, nil, &models.ExpiryRaceError{PlanID: p.ID, Current: from, Attempted: to}
	}
	if !CanTransitionPlan(from, to) {
		return p, nil, &models.TransitionError{
			Entity: "plan", ID: p.ID, From: string(from), To: string(to),
		}
	}
	if trig.Now.IsZero() {
		trig.Now = time.Now().UTC()
	}

	next := p
	next.Status = to
	next.UpdatedAt = trig.Now
	if trig.Note != "" {
		next.Note = trig.Note
	}

	ev := newPlanEvent(next, from, to, trig.CorrelationID, trig.Now)
	ev.Note = trig.Note
	return next, []models.Event{ev}, nil
}

// CompleteStep marks one checklist step done. Unknown steps are a
// TransitionError; completing a done step is a no-op.
func CompleteStep(p models.MigrationPlan, step string, now time.Time) (models.MigrationPlan, bool, error) {
	if p.Status != models.PlanApproved && p.Status != models.PlanInProgress {
		return p, false, &models.TransitionError{
			Entity: "plan", ID: p.ID, From: string(p.Status), To: "step:" + step,
			Reason: "steps can only be completed on an approved or in-progress plan",
		}
	}
	steps := make([]models.PlanStep, len(p.Steps))
	copy(steps, p.Steps)
	for i := range steps {
		if steps[i].Name != step {
			continue
		}
		if steps[i].Status == models.StepDone {
			return p, false, nil
		}
		at := now.UTC()
		steps[i].Status = models.StepDone
		steps[i].CompletedAt = &at
		p.Steps = steps
		p.UpdatedAt = at
		return p, true, nil
	}
	return p, false, &models.TransitionError{
		Entity: "plan", ID: p.ID, From: string(p.Status), To: "step:" + step, Reason: "unknown step",
	}
}

func newPlanEvent(p models.MigrationPlan, prior, next models.PlanStatus, correlationID string, now time.Time) models.Event {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return models.Event{
		EventID:       uuid.NewString(),
		SchemaVersion: models.EventSchemaVersion,
		EventType:     planEventTypes[next],
		TenantID:      p.TenantID,
		CorrelationID: correlationID,
		DiscoveryID:   p.DiscoveryID,
		PlanID:        p.ID,
		PriorState:    string(prior),
		NewState:      string(next),
		Severity:      p.Severity,
		Timestamp:     now.UTC(),
	}
}
