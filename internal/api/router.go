// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shadowscan/internal/middleware"
	"github.com/tomtom215/shadowscan/internal/models"
)

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitReqs     int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// RequestTimeout bounds every non-streaming request. Zero disables it.
	RequestTimeout time.Duration

	// IngestKey guards the push ingestion routes. Empty leaves them open.
	IngestKey string
}

// NewRouter builds the chi router over h.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.CORSOrigins
	if cfg.RateLimitReqs > 0 {
		mwCfg.RateLimitRequests = cfg.RateLimitReqs
	}
	if cfg.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = cfg.RateLimitWindow
	}
	mwCfg.RateLimitDisabled = cfg.RateLimitDisabled
	mw := NewChiMiddleware(mwCfg)

	r := chi.NewRouter()

	// Applied to every route, websocket included.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, &models.APIError{Code: ErrCodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, &models.APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/tenants/{tenant}", func(r chi.Router) {
		r.Use(TenantContext)

		// Push sources authenticate with the ingest key and are not held to
		// the per-client rate limit.
		r.Route("/ingest", func(r chi.Router) {
			r.Use(IngestKey(cfg.IngestKey))
			if cfg.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			}
			r.Post("/proxy-events", h.IngestProxyEvent)
			r.Post("/extension-events", h.IngestExtensionEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.Get("/events/ws", h.EventFeed)

			r.Group(func(r chi.Router) {
				if cfg.RequestTimeout > 0 {
					r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
				}
				r.Use(middleware.Compression)

				r.Post("/scans", h.TriggerScan)
				r.Get("/scans", h.ScanHistory)

				r.Get("/discoveries", h.ListDiscoveries)
				r.Route("/discoveries/{id}", func(r chi.Router) {
					r.Get("/", h.GetDiscovery)
					r.Post("/assess", h.AssessDiscovery)
					r.Post("/notify", h.NotifyDiscovery)
					r.Post("/dismiss", h.DismissDiscovery)
					r.Post("/migration", h.StartMigration)
					r.Post("/rollback", h.RollbackMigration)
				})

				r.Route("/plans/{id}", func(r chi.Router) {
					r.Get("/", h.GetPlan)
					r.Post("/approval", h.ApprovalCallback)
					r.Post("/start", h.StartPlanWork)
					r.Post("/complete", h.CompletePlan)
					r.Post("/steps/{step}", h.CompleteStep)
				})

				r.Get("/risk-report", h.RiskReport)
				r.Get("/dashboard", h.Dashboard)
			})
		})
	})

	return r
}
