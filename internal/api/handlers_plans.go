// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shadowscan/internal/core"
	"github.com/tomtom215/shadowscan/internal/models"
)

// GetPlan handles GET /tenants/{tenant}/plans/{id}.
//
// @Summary Get a migration plan
// @Tags Migration
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Plan ID"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Plan"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /tenants/{tenant}/plans/{id} [get]
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, err := h.svc.GetPlan(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, plan)
}

// ApprovalCallback handles POST /tenants/{tenant}/plans/{id}/approval, the
// approval service's decision on a pending plan.
//
// @Summary Approval service callback
// @Tags Migration
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Plan ID"
// @Param request body ApprovalRequest true "Decision"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Decided plan"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/plans/{id}/approval [post]
func (h *Handler) ApprovalCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ApprovalRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	plan, err := h.svc.ApprovalCallback(r.Context(), tenantParam(r), chi.URLParam(r, "id"), core.ApprovalDecision{
		Approved:  *req.Approved,
		Reference: req.Reference,
		Note:      req.Note,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, plan)
}

// StartPlanWork handles POST /tenants/{tenant}/plans/{id}/start.
//
// @Summary Start migration work
// @Tags Migration
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Plan ID"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Plan in progress"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/plans/{id}/start [post]
func (h *Handler) StartPlanWork(w http.ResponseWriter, r *http.Request) {
	h.planAction(w, r, h.svc.StartPlanWork)
}

// CompletePlan handles POST /tenants/{tenant}/plans/{id}/complete.
//
// @Summary Complete a migration plan
// @Tags Migration
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Plan ID"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Completed plan"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/plans/{id}/complete [post]
func (h *Handler) CompletePlan(w http.ResponseWriter, r *http.Request) {
	h.planAction(w, r, h.svc.CompletePlan)
}

// CompleteStep handles POST /tenants/{tenant}/plans/{id}/steps/{step}.
//
// @Summary Complete a migration step
// @Tags Migration
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Plan ID"
// @Param step path string true "Step name"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Plan with step done"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/plans/{id}/steps/{step} [post]
func (h *Handler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, err := h.svc.CompleteStep(r.Context(), tenantParam(r), chi.URLParam(r, "id"), chi.URLParam(r, "step"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, plan)
}

func (h *Handler) planAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error)) {
	start := time.Now()
	plan, err := fn(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, plan)
}
