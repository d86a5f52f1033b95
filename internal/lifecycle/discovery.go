// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Trigger carries the facts a transition is allowed to depend on.
type Trigger struct {
	CorrelationID string
	Now           time.Time
	Note          string

	// Stakeholder is who was informed; required for -> notified.
	Stakeholder string

	// Plan is the plan driving a migrating/migrated/rollback move.
	Plan *models.MigrationPlan

	// ActivePlanID is set when some other non-terminal plan already exists
	// for the discovery.
	ActivePlanID string
}

var discoveryEdges = map[models.DiscoveryStatus][]models.DiscoveryStatus{
	models.StatusDetected:  {models.StatusAssessed, models.StatusDismissed},
	models.StatusAssessed:  {models.StatusNotified, models.StatusDismissed},
	models.StatusNotified:  {models.StatusMigrating, models.StatusDismissed},
	models.StatusMigrating: {models.StatusMigrated, models.StatusAssessed, models.StatusDismissed},
}

// CanTransition reports whether from -> to is an edge of the machine.
func CanTransition(from, to models.DiscoveryStatus) bool {
	for _, s := range discoveryEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Discovered builds the creation event for a new discovery.
func Discovered(d models.Discovery, correlationID string, now time.Time) models.Event {
	return newEvent(models.EventDiscovered, d, "", string(models.StatusDetected), correlationID, now)
}

// Transition applies one edge. On success it returns the updated discovery
// and exactly one event. On failure it returns d unchanged and a
// *models.TransitionError, or a *models.ConflictError for a second active plan.
func Transition(d models.Discovery, to models.DiscoveryStatus, trig Trigger) (models.Discovery, []models.Event, error) {
	from := d.Status
	reject := func(reason string) (models.Discovery, []models.Event, error) {
		return d, nil, &models.TransitionError{
			Entity: "discovery", ID: d.ID, From: string(from), To: string(to), Reason: reason,
		}
	}

	if from.IsTerminal() {
		return reject("discovery is closed")
	}
	// A second plan is a conflict even when the discovery already moved.
	if to == models.StatusMigrating && trig.ActivePlanID != "" {
		return d, nil, &models.ConflictError{
			Entity: "discovery", ID: d.ID,
			Reason: fmt.Sprintf("migration plan %s is still active", trig.ActivePlanID),
		}
	}
	if !CanTransition(from, to) {
		return reject("")
	}
	if trig.Now.IsZero() {
		trig.Now = time.Now().UTC()
	}

	next := d
	next.StatusNote = trig.Note
	eventType := ""

	switch to {
	case models.StatusAssessed:
		if from == models.StatusMigrating {
			p := trig.Plan
			if p == nil || p.DiscoveryID != d.ID {
				return reject("no plan to roll back")
			}
			if p.Status != models.PlanExpired && p.Status != models.PlanRejected {
				return reject(fmt.Sprintf("plan is %s", p.Status))
			}
			if next.StatusNote == "" {
				next.StatusNote = fmt.Sprintf("migration plan %s %s", p.ID, p.Status)
			}
			eventType = models.EventMigrationRollback
			break
		}
		if !d.ScoreFresh() {
			return reject("risk score is stale")
		}
		eventType = models.EventAssessed

	case models.StatusNotified:
		if trig.Stakeholder == "" {
			return reject("stakeholder required")
		}
		next.NotifiedStakeholder = trig.Stakeholder
		eventType = models.EventNotified

	case models.StatusMigrating:
		p := trig.Plan
		if p == nil || p.DiscoveryID != d.ID || !p.Active() {
			return reject("an active plan for this discovery is required")
		}
		eventType = models.EventMigrationStarted

	case models.StatusMigrated:
		p := trig.Plan
		if p == nil || p.DiscoveryID != d.ID || p.Status != models.PlanCompleted {
			return reject("only a completed plan can finish a migration")
		}
		eventType = models.EventMigrationCompleted

	case models.StatusDismissed:
		eventType = models.EventDismissed
	}

	next.Status = to
	next.UpdatedAt = trig.Now

	ev := newEvent(eventType, next, string(from), string(to), trig.CorrelationID, trig.Now)
	if trig.Plan != nil {
		ev.PlanID = trig.Plan.ID
	}
	ev.Note = next.StatusNote
	return next, []models.Event{ev}, nil
}

func newEvent(eventType string, d models.Discovery, prior, next, correlationID string, now time.Time) models.Event {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return models.Event{
		EventID:       uuid.NewString(),
		SchemaVersion: models.EventSchemaVersion,
		EventType:     eventType,
		TenantID:      d.TenantID,
		CorrelationID: correlationID,
		DiscoveryID:   d.ID,
		PriorState:    prior,
		NewState:      next,
		Severity:      d.Severity,
		Timestamp:     now.UTC(),
	}
}
