// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

var now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func freshDiscovery(status models.DiscoveryStatus) models.Discovery {
	return models.Discovery{
		ID:       "d-1",
		TenantID: "acme",
		ToolID:   "chatgpt",
		Status:   status,
		Severity: models.SeverityHigh,
		Inputs:   models.RiskInputs{UpdatedAt: now.Add(-time.Hour)},
		ScoredAt: now.Add(-time.Minute),
	}
}

func plan(status models.PlanStatus) *models.MigrationPlan {
	return &models.MigrationPlan{ID: "p-1", DiscoveryID: "d-1", TenantID: "acme", Status: status}
}

var allStatuses = []models.DiscoveryStatus{
	models.StatusDetected, models.StatusAssessed, models.StatusNotified,
	models.StatusMigrating, models.StatusMigrated, models.StatusDismissed,
}

// triggerFor satisfies every guard so only the edge table decides.
func triggerFor(from, to models.DiscoveryStatus) Trigger {
	trig := Trigger{CorrelationID: "corr", Now: now, Stakeholder: "security"}
	switch {
	case to == models.StatusMigrating:
		trig.Plan = plan(models.PlanApprovalPending)
	case to == models.StatusMigrated:
		trig.Plan = plan(models.PlanCompleted)
	case from == models.StatusMigrating && to == models.StatusAssessed:
		trig.Plan = plan(models.PlanExpired)
	}
	return trig
}

func TestTransition_EdgeTable(t *testing.T) {
	allowed := map[[2]models.DiscoveryStatus]string{
		{models.StatusDetected, models.StatusAssessed}:   models.EventAssessed,
		{models.StatusDetected, models.StatusDismissed}:  models.EventDismissed,
		{models.StatusAssessed, models.StatusNotified}:   models.EventNotified,
		{models.StatusAssessed, models.StatusDismissed}:  models.EventDismissed,
		{models.StatusNotified, models.StatusMigrating}:  models.EventMigrationStarted,
		{models.StatusNotified, models.StatusDismissed}:  models.EventDismissed,
		{models.StatusMigrating, models.StatusMigrated}:  models.EventMigrationCompleted,
		{models.StatusMigrating, models.StatusAssessed}:  models.EventMigrationRollback,
		{models.StatusMigrating, models.StatusDismissed}: models.EventDismissed,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			d := freshDiscovery(from)
			got, events, err := Transition(d, to, triggerFor(from, to))
			wantType, ok := allowed[[2]models.DiscoveryStatus{from, to}]

			if !ok {
				if !errors.Is(err, models.ErrInvalidTransition) {
					t.Errorf("%s -> %s: error = %v, want ErrInvalidTransition", from, to, err)
				}
				if got.Status != from || events != nil {
					t.Errorf("%s -> %s: rejected transition changed state", from, to)
				}
				continue
			}

			if err != nil {
				t.Errorf("%s -> %s: unexpected error %v", from, to, err)
				continue
			}
			if got.Status != to {
				t.Errorf("%s -> %s: status = %s", from, to, got.Status)
			}
			if len(events) != 1 {
				t.Fatalf("%s -> %s: %d events, want exactly 1", from, to, len(events))
			}
			ev := events[0]
			if ev.EventType != wantType || ev.PriorState != string(from) || ev.NewState != string(to) {
				t.Errorf("%s -> %s: event = %+v", from, to, ev)
			}
			if ev.CorrelationID != "corr" || ev.TenantID != "acme" || ev.DiscoveryID != "d-1" {
				t.Errorf("%s -> %s: event identity = %+v", from, to, ev)
			}
			if err := ev.Validate(); err != nil {
				t.Errorf("%s -> %s: invalid event: %v", from, to, err)
			}
		}
	}
}

func TestTransition_AssessRequiresFreshScore(t *testing.T) {
	d := freshDiscovery(models.StatusDetected)
	d.ScoredAt = d.Inputs.UpdatedAt.Add(-time.Second)

	got, _, err := Transition(d, models.StatusAssessed, Trigger{Now: now})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
	if got.Status != models.StatusDetected {
		t.Errorf("status = %s, want detected", got.Status)
	}
}

func TestTransition_NotifyRecordsStakeholder(t *testing.T) {
	d := freshDiscovery(models.StatusAssessed)

	if _, _, err := Transition(d, models.StatusNotified, Trigger{Now: now}); err == nil {
		t.Error("notify without stakeholder should fail")
	}
	got, _, err := Transition(d, models.StatusNotified, Trigger{Now: now, Stakeholder: "manager"})
	if err != nil {
		t.Fatal(err)
	}
	if got.NotifiedStakeholder != "manager" {
		t.Errorf("NotifiedStakeholder = %q, want manager", got.NotifiedStakeholder)
	}
}

func TestTransition_MigratingConflict(t *testing.T) {
	d := freshDiscovery(models.StatusNotified)

	_, _, err := Transition(d, models.StatusMigrating, Trigger{Now: now, Plan: plan(models.PlanProposed), ActivePlanID: "p-0"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestTransition_MigratingConflictAfterRacingMove(t *testing.T) {
	// The discovery was already moved by a competing proposal.
	d := freshDiscovery(models.StatusMigrating)

	_, _, err := Transition(d, models.StatusMigrating, Trigger{Now: now, Plan: plan(models.PlanApprovalPending), ActivePlanID: "p-0"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
	if errors.Is(err, models.ErrInvalidTransition) {
		t.Error("a second plan must not surface as an invalid transition")
	}
}

func TestTransition_MigratedOnlyFromCompletedPlan(t *testing.T) {
	d := freshDiscovery(models.StatusMigrating)

	for _, st := range []models.PlanStatus{models.PlanInProgress, models.PlanApproved, models.PlanExpired} {
		if _, _, err := Transition(d, models.StatusMigrated, Trigger{Now: now, Plan: plan(st)}); err == nil {
			t.Errorf("plan %s should not complete the migration", st)
		}
	}
	if _, _, err := Transition(d, models.StatusMigrated, Trigger{Now: now}); err == nil {
		t.Error("missing plan should not complete the migration")
	}
	other := plan(models.PlanCompleted)
	other.DiscoveryID = "d-2"
	if _, _, err := Transition(d, models.StatusMigrated, Trigger{Now: now, Plan: other}); err == nil {
		t.Error("another discovery's plan should not complete this migration")
	}
}

func TestTransition_RollbackNeedsDeadPlan(t *testing.T) {
	d := freshDiscovery(models.StatusMigrating)

	if _, _, err := Transition(d, models.StatusAssessed, Trigger{Now: now, Plan: plan(models.PlanInProgress)}); err == nil {
		t.Error("rollback with a live plan should fail")
	}
	got, events, err := Transition(d, models.StatusAssessed, Trigger{Now: now, Plan: plan(models.PlanRejected)})
	if err != nil {
		t.Fatal(err)
	}
	if got.StatusNote == "" || events[0].PlanID != "p-1" {
		t.Errorf("rollback should carry a note and the plan id, got note %q event %+v", got.StatusNote, events[0])
	}
}

func TestTransitionPlan(t *testing.T) {
	p := *plan(models.PlanProposed)
	steps := []models.PlanStatus{models.PlanApprovalPending, models.PlanApproved, models.PlanInProgress, models.PlanCompleted}
	wantEvents := []string{models.EventPlanApprovalPending, models.EventPlanApproved, models.EventPlanInProgress, models.EventPlanCompleted}

	for i, to := range steps {
		next, events, err := TransitionPlan(p, to, Trigger{Now: now})
		if err != nil {
			t.Fatalf("-> %s: %v", to, err)
		}
		if len(events) != 1 || events[0].EventType != wantEvents[i] || events[0].PlanID != "p-1" {
			t.Errorf("-> %s: events = %+v", to, events)
		}
		p = next
	}

	_, _, err := TransitionPlan(p, models.PlanExpired, Trigger{Now: now})
	var race *models.ExpiryRaceError
	if !errors.As(err, &race) {
		t.Fatalf("expiring a completed plan: error = %v, want ExpiryRaceError", err)
	}
	if race.Current != models.PlanCompleted {
		t.Errorf("race.Current = %s, want completed", race.Current)
	}
}

func TestTransitionPlan_InvalidEdges(t *testing.T) {
	tests := []struct {
		from, to models.PlanStatus
	}{
		{models.PlanProposed, models.PlanCompleted},
		{models.PlanApprovalPending, models.PlanInProgress},
		{models.PlanInProgress, models.PlanRejected},
		{models.PlanApproved, models.PlanApprovalPending},
	}
	for _, tt := range tests {
		p := *plan(tt.from)
		got, _, err := TransitionPlan(p, tt.to, Trigger{Now: now})
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("%s -> %s: error = %v, want ErrInvalidTransition", tt.from, tt.to, err)
		}
		if got.Status != tt.from {
			t.Errorf("%s -> %s: status changed to %s", tt.from, tt.to, got.Status)
		}
	}
}

func TestTransitionPlan_ExpireFromEveryActiveState(t *testing.T) {
	for _, st := range []models.PlanStatus{models.PlanProposed, models.PlanApprovalPending, models.PlanApproved, models.PlanInProgress} {
		got, events, err := TransitionPlan(*plan(st), models.PlanExpired, Trigger{Now: now})
		if err != nil {
			t.Errorf("%s -> expired: %v", st, err)
			continue
		}
		if got.Status != models.PlanExpired || events[0].EventType != models.EventPlanExpired {
			t.Errorf("%s -> expired: got %s / %s", st, got.Status, events[0].EventType)
		}
	}
}

func TestCompleteStep(t *testing.T) {
	p := *plan(models.PlanInProgress)
	for _, name := range models.DefaultStepNames {
		p.Steps = append(p.Steps, models.PlanStep{Name: name, Status: models.StepPending})
	}

	next, changed, err := CompleteStep(p, models.StepProvisionAccess, now)
	if err != nil || !changed {
		t.Fatalf("CompleteStep = (%v, %v)", changed, err)
	}
	if next.Steps[1].Status != models.StepDone || next.Steps[1].CompletedAt == nil {
		t.Errorf("step not marked done: %+v", next.Steps[1])
	}
	if p.Steps[1].Status != models.StepPending {
		t.Error("CompleteStep mutated its input")
	}

	if _, changed, _ := CompleteStep(next, models.StepProvisionAccess, now); changed {
		t.Error("completing a done step should be a no-op")
	}
	if _, _, err := CompleteStep(next, "bogus", now); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("unknown step error = %v", err)
	}
	p.Status = models.PlanApprovalPending
	if _, _, err := CompleteStep(p, models.StepNotifyEmployee, now); err == nil {
		t.Error("steps should not complete before approval")
	}
}
