// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"

	"github.com/tomtom215/shadowscan/internal/models"
)

// ApprovalDecision is the body of an approval-system callback.
type ApprovalDecision struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference" validate:"omitempty,max=128"`
	Note      string `json:"note" validate:"omitempty,max=1024"`
}

// StartMigration proposes a plan for a notified discovery and requests
// approval for it.
func (s *Service) StartMigration(ctx context.Context, tenantID, discoveryID string) (models.MigrationPlan, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.MigrationPlan{}, err
	}
	ctx, _ = correlationID(ctx)
	p, err := s.workflow.Propose(ctx, tenantID, discoveryID)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	s.onCommit()
	return p, nil
}

// ApprovalCallback applies the approval system's decision to a plan.
func (s *Service) ApprovalCallback(ctx context.Context, tenantID, planID string, dec ApprovalDecision) (models.MigrationPlan, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.MigrationPlan{}, err
	}
	ctx, _ = correlationID(ctx)

	var (
		p   models.MigrationPlan
		err error
	)
	if dec.Approved {
		p, err = s.workflow.Approve(ctx, tenantID, planID, dec.Reference)
	} else {
		p, err = s.workflow.Reject(ctx, tenantID, planID, dec.Note)
	}
	if err != nil {
		return models.MigrationPlan{}, err
	}
	s.onCommit()
	return p, nil
}

// StartPlanWork marks an approved plan as in progress.
func (s *Service) StartPlanWork(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	return s.planCall(ctx, tenantID, func(ctx context.Context) (models.MigrationPlan, error) {
		return s.workflow.Start(ctx, tenantID, planID)
	})
}

// CompletePlan finishes a plan and marks its discovery migrated.
func (s *Service) CompletePlan(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	return s.planCall(ctx, tenantID, func(ctx context.Context) (models.MigrationPlan, error) {
		return s.workflow.Complete(ctx, tenantID, planID)
	})
}

// CompleteStep ticks one checklist item of a plan.
func (s *Service) CompleteStep(ctx context.Context, tenantID, planID, step string) (models.MigrationPlan, error) {
	if step == "" {
		return models.MigrationPlan{}, &models.ValidationError{Field: "step", Message: "required"}
	}
	return s.planCall(ctx, tenantID, func(ctx context.Context) (models.MigrationPlan, error) {
		return s.workflow.CompleteStep(ctx, tenantID, planID, step)
	})
}

// GetPlan returns a plan by id.
func (s *Service) GetPlan(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.MigrationPlan{}, err
	}
	return s.workflow.Get(ctx, tenantID, planID)
}

// RollbackMigration returns a migrating discovery whose plan expired or was
// rejected to assessed.
func (s *Service) RollbackMigration(ctx context.Context, tenantID, discoveryID, note string) (models.Discovery, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.Discovery{}, err
	}
	ctx, _ = correlationID(ctx)
	d, err := s.workflow.Rollback(ctx, tenantID, discoveryID, note)
	if err != nil {
		return models.Discovery{}, err
	}
	s.onCommit()
	return d, nil
}

// SweepExpired expires overdue plans across all tenants.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	ctx, _ = correlationID(ctx)
	n, err := s.workflow.Sweep(ctx, s.now())
	if n > 0 {
		s.onCommit()
	}
	return n, err
}

func (s *Service) planCall(ctx context.Context, tenantID string, fn func(context.Context) (models.MigrationPlan, error)) (models.MigrationPlan, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.MigrationPlan{}, err
	}
	ctx, _ = correlationID(ctx)
	p, err := fn(ctx)
	if err != nil {
		return models.MigrationPlan{}, err
	}
	s.onCommit()
	return p, nil
}
