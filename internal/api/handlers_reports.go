// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/validation"
)

// TriggerScan handles POST /tenants/{tenant}/scans. The body may pin a
// window ({"start": ..., "end": ...}); without one the last complete scan
// interval is scanned. A partial scan answers 200 with partial=true and the
// error in the result.
//
// @Summary Trigger a scan
// @Tags Scans
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param request body ScanRequest false "Optional window"
// @Success 200 {object} models.APIResponse{data=models.ScanResult} "Scan result"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 409 {object} models.APIResponse "Conflict or invalid transition"
// @Failure 503 {object} models.APIResponse "Collaborator unavailable"
// @Router /tenants/{tenant}/scans [post]
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ScanRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	var win models.Window
	if req.Start != nil && req.End != nil {
		win = models.Window{Start: req.Start.UTC(), End: req.End.UTC()}
		if !win.Valid() {
			respondServiceError(w, r, &models.ValidationError{Field: "end", Message: "must be after start"})
			return
		}
	}

	res, err := h.svc.TriggerScan(r.Context(), tenantParam(r), win)
	if err != nil && !(res.Partial && res.ID != "") {
		respondServiceError(w, r, err)
		return
	}
	if err != nil {
		logging.CtxWarn(r.Context()).Err(err).Str("scan_id", res.ID).Msg("Scan completed partially")
	}
	respondData(w, r, http.StatusOK, start, res)
}

// ScanHistory handles GET /tenants/{tenant}/scans?limit=N.
//
// @Summary Scan history
// @Tags Scans
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param limit query int false "Maximum results (default 50, max 500)"
// @Success 200 {object} models.APIResponse{data=[]models.ScanResult} "Scan results, newest first"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Router /tenants/{tenant}/scans [get]
func (h *Handler) ScanHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(&ScanHistoryRequest{Limit: limit}); verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	results, err := h.svc.ScanHistory(r.Context(), tenantParam(r), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if results == nil {
		results = []models.ScanResult{}
	}
	respondData(w, r, http.StatusOK, start, results)
}

// RiskReport handles GET /tenants/{tenant}/risk-report.
//
// @Summary Aggregated risk report
// @Tags Reports
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Success 200 {object} models.APIResponse{data=risk.Report} "Risk report"
// @Router /tenants/{tenant}/risk-report [get]
func (h *Handler) RiskReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, err := h.svc.RiskReport(r.Context(), tenantParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, rep)
}

// Dashboard handles GET /tenants/{tenant}/dashboard?days=N (default 30).
//
// @Summary Dashboard
// @Tags Reports
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param days query int false "Lookback in days (default 30, max 365)"
// @Success 200 {object} models.APIResponse{data=models.Dashboard} "Dashboard"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Router /tenants/{tenant}/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	days, err := queryInt(r, "days", 0)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(&DashboardRequest{Days: days}); verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	dash, err := h.svc.Dashboard(r.Context(), tenantParam(r), days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, dash)
}
