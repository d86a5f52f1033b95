// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
)

// ListDiscoveries handles GET /tenants/{tenant}/discoveries.
//
// Query: status, severity (repeatable or comma-separated), tool, since
// (RFC 3339), limit (default 50, max 500), offset.
//
// @Summary List discoveries
// @Tags Discoveries
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param status query string false "Status filter, comma-separated"
// @Param severity query string false "Severity filter, comma-separated"
// @Param tool query string false "Tool ID"
// @Param since query string false "RFC 3339 lower bound on last seen"
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.APIResponse{data=[]models.Discovery} "Discovery page"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Router /tenants/{tenant}/discoveries [get]
func (h *Handler) ListDiscoveries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseDiscoveryFilter(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	page, err := h.svc.ListDiscoveries(r.Context(), tenantParam(r), f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, start, page.Items, models.PaginationInfo{
		Limit:   page.Limit,
		Offset:  page.Offset,
		Total:   page.Total,
		HasMore: page.Offset+len(page.Items) < page.Total,
	})
}

// GetDiscovery handles GET /tenants/{tenant}/discoveries/{id}.
//
// @Summary Get a discovery
// @Tags Discoveries
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Success 200 {object} models.APIResponse{data=models.Discovery} "Discovery"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /tenants/{tenant}/discoveries/{id} [get]
func (h *Handler) GetDiscovery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	d, err := h.svc.GetDiscovery(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, d)
}

// AssessDiscovery handles POST /tenants/{tenant}/discoveries/{id}/assess.
//
// @Summary Assess a discovery
// @Tags Discoveries
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Success 200 {object} models.APIResponse{data=models.Discovery} "Assessed discovery"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Failure 503 {object} models.APIResponse "Collaborator unavailable"
// @Router /tenants/{tenant}/discoveries/{id}/assess [post]
func (h *Handler) AssessDiscovery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	d, err := h.svc.Assess(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, d)
}

// NotifyDiscovery handles POST /tenants/{tenant}/discoveries/{id}/notify.
//
// @Summary Record stakeholder notification
// @Tags Discoveries
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Success 200 {object} models.APIResponse{data=models.Discovery} "Notified discovery"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/discoveries/{id}/notify [post]
func (h *Handler) NotifyDiscovery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	d, err := h.svc.RecordNotification(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, d)
}

// DismissDiscovery handles POST /tenants/{tenant}/discoveries/{id}/dismiss
// with an optional {"note": "..."} body.
//
// @Summary Dismiss a discovery
// @Tags Discoveries
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Param request body NoteRequest false "Optional note"
// @Success 200 {object} models.APIResponse{data=models.Discovery} "Dismissed discovery"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/discoveries/{id}/dismiss [post]
func (h *Handler) DismissDiscovery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req NoteRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	d, err := h.svc.Dismiss(r.Context(), tenantParam(r), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.CtxInfo(r.Context()).Str("discovery_id", d.ID).Msg("Discovery dismissed")
	respondData(w, r, http.StatusOK, start, d)
}

// StartMigration handles POST /tenants/{tenant}/discoveries/{id}/migration.
//
// @Summary Propose a migration
// @Tags Migration
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Success 200 {object} models.APIResponse{data=models.MigrationPlan} "Pending plan"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Failure 503 {object} models.APIResponse "Collaborator unavailable"
// @Router /tenants/{tenant}/discoveries/{id}/migration [post]
func (h *Handler) StartMigration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, err := h.svc.StartMigration(r.Context(), tenantParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, start, plan)
}

// RollbackMigration handles POST /tenants/{tenant}/discoveries/{id}/rollback.
//
// @Summary Roll back a migration
// @Tags Migration
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param id path string true "Discovery ID"
// @Param request body NoteRequest false "Optional note"
// @Success 200 {object} models.APIResponse{data=models.Discovery} "Discovery after rollback"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 404 {object} models.APIResponse "Not found"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Router /tenants/{tenant}/discoveries/{id}/rollback [post]
func (h *Handler) RollbackMigration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req NoteRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	d, err := h.svc.RollbackMigration(r.Context(), tenantParam(r), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, d)
}
