// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// readinessTimeout bounds the whole readiness check.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Process is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, time.Time{}, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness requests. It answers 503 when any
// registered check fails.
//
// @Summary Readiness
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "All checks pass"
// @Failure 503 {object} models.APIResponse "A dependency is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]bool, len(h.checks))
	ready := true
	for _, c := range h.checks {
		ok := c.Ready(ctx)
		checks[c.Name] = ok
		ready = ready && ok
	}

	data := map[string]interface{}{
		"status": "ready",
		"checks": checks,
	}
	if !ready {
		data["status"] = "not_ready"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     data,
			Metadata: metadata(r, time.Time{}),
			Error:    &models.APIError{Code: ErrCodeNotReady, Message: "one or more dependencies are not ready"},
		})
		return
	}
	respondData(w, r, http.StatusOK, time.Time{}, data)
}
