// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import "time"

// PlanStatus is a MigrationPlan's workflow state.
type PlanStatus string

const (
	PlanProposed        PlanStatus = "proposed"
	PlanApprovalPending PlanStatus = "approval-pending"
	PlanApproved        PlanStatus = "approved"
	PlanInProgress      PlanStatus = "in-progress"
	PlanCompleted       PlanStatus = "completed"
	PlanExpired         PlanStatus = "expired"
	PlanRejected        PlanStatus = "rejected"
)

// IsTerminal reports whether the plan can no longer change.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanCompleted || s == PlanExpired || s == PlanRejected
}

// Expirable reports whether the expiry sweep may act on a plan in this state.
func (s PlanStatus) Expirable() bool {
	return s != PlanCompleted && s != PlanRejected && s != PlanExpired
}

// Alternative is a governed tool offered by the catalog.
type Alternative struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Rank     int    `json:"rank"`
}

// Migration step names.
const (
	StepNotifyEmployee     = "notify_employee"
	StepProvisionAccess    = "provision_access"
	StepTrainingCompletion = "training_completion"
	StepShadowToolBlock    = "shadow_tool_block"
)

// DefaultStepNames is the checklist every new plan starts with.
var DefaultStepNames = []string{
	StepNotifyEmployee,
	StepProvisionAccess,
	StepTrainingCompletion,
	StepShadowToolBlock,
}

// Step statuses.
const (
	StepPending = "pending"
	StepDone    = "done"
)

// PlanStep is one checklist item.
type PlanStep struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MigrationPlan moves a Discovery onto a governed alternative. It references
// the Discovery by id only.
type MigrationPlan struct {
	ID          string      `json:"id"`
	DiscoveryID string      `json:"discovery_id"`
	TenantID    string      `json:"tenant_id"`
	ToolID      string      `json:"tool_id"`
	Alternative Alternative `json:"alternative"`
	Status      PlanStatus  `json:"status"`
	Severity    Severity    `json:"severity"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	DueBy     time.Time `json:"due_by"`
	UpdatedAt time.Time `json:"updated_at"`

	ApprovalRef string     `json:"approval_ref,omitempty"`
	Steps       []PlanStep `json:"steps"`
	Note        string     `json:"note,omitempty"`
	Version     int64      `json:"version"`
}

// Active reports whether the plan still counts against the one-per-discovery limit.
func (p *MigrationPlan) Active() bool {
	return !p.Status.IsTerminal()
}

// PastExpiry reports whether the sweep should expire the plan at now.
func (p *MigrationPlan) PastExpiry(now time.Time) bool {
	return p.Status.Expirable() && !p.ExpiresAt.After(now)
}
