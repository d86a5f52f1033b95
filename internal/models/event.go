// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import (
	"fmt"
	"time"
)

// EventSchemaVersion is bumped on breaking changes to Event.
const EventSchemaVersion = 1

// Discovery lifecycle event types.
const (
	EventDiscovered         = "shadow_ai.discovered"
	EventAssessed           = "shadow_ai.assessed"
	EventNotified           = "shadow_ai.notified"
	EventMigrationStarted   = "shadow_ai.migration_started"
	EventMigrationCompleted = "shadow_ai.migration_completed"
	EventMigrationRollback  = "shadow_ai.migration_rolled_back"
	EventDismissed          = "shadow_ai.dismissed"
)

// Migration plan event types.
const (
	EventPlanProposed        = "shadow_ai.plan_proposed"
	EventPlanApprovalPending = "shadow_ai.plan_approval_pending"
	EventPlanApproved        = "shadow_ai.plan_approved"
	EventPlanInProgress      = "shadow_ai.plan_in_progress"
	EventPlanCompleted       = "shadow_ai.plan_completed"
	EventPlanRejected        = "shadow_ai.plan_rejected"
	EventPlanExpired         = "shadow_ai.plan_expired"
)

// EventTopicPrefix prefixes every published subject.
const EventTopicPrefix = "shadowai"

// Event is a lifecycle notification. Consumers deduplicate on EventID, or on
// (DiscoveryID|PlanID, PriorState, NewState).
type Event struct {
	EventID       string    `json:"event_id"`
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	TenantID      string    `json:"tenant_id"`
	CorrelationID string    `json:"correlation_id"`
	DiscoveryID   string    `json:"discovery_id,omitempty"`
	PlanID        string    `json:"plan_id,omitempty"`
	PriorState    string    `json:"prior_state,omitempty"`
	NewState      string    `json:"new_state,omitempty"`
	Severity      Severity  `json:"severity,omitempty"`
	Note          string    `json:"note,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate checks the fields every consumer relies on.
func (e *Event) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.EventType == "" {
		return &ValidationError{Field: "event_type", Message: "required"}
	}
	if e.TenantID == "" {
		return &ValidationError{Field: "tenant_id", Message: "required"}
	}
	if e.DiscoveryID == "" && e.PlanID == "" {
		return &ValidationError{Field: "discovery_id", Message: "discovery_id or plan_id required"}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "required"}
	}
	return nil
}

// Topic returns the publish subject, e.g. "shadowai.tenant-a.shadow_ai.discovered".
func (e *Event) Topic() string {
	return fmt.Sprintf("%s.%s.%s", EventTopicPrefix, e.TenantID, e.EventType)
}

// DedupKey is the idempotency key consumers should use.
func (e *Event) DedupKey() string {
	id := e.DiscoveryID
	if e.PlanID != "" {
		id = e.PlanID
	}
	return fmt.Sprintf("%s:%s>%s", id, e.PriorState, e.NewState)
}

// ValidationError reports a malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}
