// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shadowscan/internal/ingest"
	"github.com/tomtom215/shadowscan/internal/models"
)

// IngestProxyEvent handles POST /tenants/{tenant}/ingest/proxy-events.
// The client address in the body is pseudonymised before it is stored.
//
// @Summary Ingest a proxy connection event
// @Tags Ingest
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Security IngestKey
// @Param request body ProxyEventRequest true "Connection metadata"
// @Success 202 {object} models.APIResponse{data=ingest.Receipt} "Event accepted"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 401 {object} models.APIResponse "Missing or invalid ingest key"
// @Failure 503 {object} models.APIResponse "Push ingestion disabled"
// @Router /tenants/{tenant}/ingest/proxy-events [post]
func (h *Handler) IngestProxyEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.ingestEnabled(w, r) {
		return
	}
	var req ProxyEventRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	rec, err := h.ingest.AcceptProxyEvent(r.Context(), tenantParam(r), ingest.ProxyEvent{
		DestinationHost: req.DestinationHost,
		DestinationPort: req.DestinationPort,
		SourceIP:        req.SourceIP,
		Protocol:        req.Protocol,
		BytesSent:       req.BytesSent,
		Timestamp:       *req.EventTimestamp,
		ProxySource:     req.ProxySource,
		Department:      req.Department,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusAccepted, start, rec)
}

// IngestExtensionEvent handles POST /tenants/{tenant}/ingest/extension-events.
//
// @Summary Ingest a browser extension navigation
// @Tags Ingest
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Security IngestKey
// @Param request body ExtensionEventRequest true "Navigation metadata"
// @Success 202 {object} models.APIResponse{data=ingest.Receipt} "Event accepted"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 401 {object} models.APIResponse "Missing or invalid ingest key"
// @Failure 503 {object} models.APIResponse "Push ingestion disabled"
// @Router /tenants/{tenant}/ingest/extension-events [post]
func (h *Handler) IngestExtensionEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.ingestEnabled(w, r) {
		return
	}
	var req ExtensionEventRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	rec, err := h.ingest.AcceptExtensionEvent(r.Context(), tenantParam(r), ingest.ExtensionEvent{
		SourceID:         req.SourceID,
		ToolDomain:       req.ToolDomain,
		BrowserFamily:    req.BrowserFamily,
		ExtensionVersion: req.ExtensionVersion,
		SessionSeconds:   req.SessionDurationSeconds,
		Timestamp:        *req.TimestampUTC,
		Department:       req.Department,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusAccepted, start, rec)
}

func (h *Handler) ingestEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.ingest != nil {
		return true
	}
	respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: "push ingestion is disabled",
	})
	return false
}
