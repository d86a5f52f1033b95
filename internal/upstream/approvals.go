// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/models"
)

type approvalRequest struct {
	PlanID        string          `json:"plan_id"`
	TenantID      string          `json:"tenant_id"`
	DiscoveryID   string          `json:"discovery_id"`
	ToolID        string          `json:"tool_id"`
	AlternativeID string          `json:"alternative_id"`
	Severity      models.Severity `json:"severity"`
	DueBy         time.Time       `json:"due_by"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

type approvalResponse struct {
	Reference string `json:"reference"`
}

// ApprovalClient submits plans to the approval workflow. Decisions come back
// through the API's approval callback.
type ApprovalClient struct {
	c *client
}

var _ migration.Approvals = (*ApprovalClient)(nil)

// NewApprovalClient creates an approval workflow client. hc may be nil.
func NewApprovalClient(cfg ServiceConfig, hc *http.Client) *ApprovalClient {
	return &ApprovalClient{c: newClient("approvals", cfg, hc)}
}

// RequestApproval submits the plan and returns the workflow's reference. The
// plan id is the idempotency key, so a retried submission is not duplicated.
func (a *ApprovalClient) RequestApproval(ctx context.Context, plan models.MigrationPlan) (string, error) {
	var resp approvalResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/approvals",
		body: approvalRequest{
			PlanID:        plan.ID,
			TenantID:      plan.TenantID,
			DiscoveryID:   plan.DiscoveryID,
			ToolID:        plan.ToolID,
			AlternativeID: plan.Alternative.ID,
			Severity:      plan.Severity,
			DueBy:         plan.DueBy,
			ExpiresAt:     plan.ExpiresAt,
		},
		idempotencyKey: plan.ID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Reference == "" {
		return "", &models.UpstreamUnavailableError{Service: "approvals", Attempts: 1, Err: errors.New("empty approval reference")}
	}
	return resp.Reference, nil
}
