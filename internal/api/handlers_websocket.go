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
	ws "github.com/tomtom215/shadowscan/internal/websocket"
)

// registerTimeout bounds the wait for a hub that is restarting.
const registerTimeout = 5 * time.Second

// EventFeed handles GET /tenants/{tenant}/events/ws. The connection receives
// the tenant's lifecycle events as they are published.
func (h *Handler) EventFeed(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeUpstreamUnavailable,
			Message: "live event feed is disabled",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.CtxWarn(r.Context()).Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, tenantParam(r))
	select {
	case h.hub.Register <- client:
	case <-time.After(registerTimeout):
		logging.CtxWarn(r.Context()).Msg("WebSocket hub not accepting clients")
		_ = conn.Close()
		return
	}
	client.Start()

	logging.CtxDebug(r.Context()).Uint64("client_id", client.ID()).Msg("WebSocket client connected")
}
