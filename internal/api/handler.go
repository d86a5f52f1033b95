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
	"github.com/gorilla/websocket"

	"github.com/tomtom215/shadowscan/internal/core"
	"github.com/tomtom215/shadowscan/internal/ingest"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	ws "github.com/tomtom215/shadowscan/internal/websocket"
)

// Service is the set of operations the API exposes. *core.Service
// implements it.
type Service interface {
	TriggerScan(ctx context.Context, tenantID string, w models.Window) (models.ScanResult, error)
	ScanHistory(ctx context.Context, tenantID string, limit int) ([]models.ScanResult, error)

	ListDiscoveries(ctx context.Context, tenantID string, f models.DiscoveryFilter) (core.DiscoveryPage, error)
	GetDiscovery(ctx context.Context, tenantID, id string) (models.Discovery, error)
	Assess(ctx context.Context, tenantID, id string) (models.Discovery, error)
	RecordNotification(ctx context.Context, tenantID, id string) (models.Discovery, error)
	Dismiss(ctx context.Context, tenantID, id, note string) (models.Discovery, error)

	StartMigration(ctx context.Context, tenantID, discoveryID string) (models.MigrationPlan, error)
	RollbackMigration(ctx context.Context, tenantID, discoveryID, note string) (models.Discovery, error)
	GetPlan(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error)
	ApprovalCallback(ctx context.Context, tenantID, planID string, dec core.ApprovalDecision) (models.MigrationPlan, error)
	StartPlanWork(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error)
	CompletePlan(ctx context.Context, tenantID, planID string) (models.MigrationPlan, error)
	CompleteStep(ctx context.Context, tenantID, planID, step string) (models.MigrationPlan, error)

	RiskReport(ctx context.Context, tenantID string) (risk.Report, error)
	Dashboard(ctx context.Context, tenantID string, days int) (models.Dashboard, error)
}

var _ Service = (*core.Service)(nil)

// Ingestor accepts pushed observations. *ingest.Receiver implements it.
type Ingestor interface {
	AcceptProxyEvent(ctx context.Context, tenantID string, ev ingest.ProxyEvent) (ingest.Receipt, error)
	AcceptExtensionEvent(ctx context.Context, tenantID string, ev ingest.ExtensionEvent) (ingest.Receipt, error)
}

var _ Ingestor = (*ingest.Receiver)(nil)

// ReadinessCheck is one named dependency checked by /health/ready.
type ReadinessCheck struct {
	Name  string
	Ready func(ctx context.Context) bool
}

// Handler contains dependencies for API handlers
type Handler struct {
	svc          Service
	hub          *ws.Hub
	ingest       Ingestor
	checks       []ReadinessCheck
	maxBodyBytes int64
	upgrader     websocket.Upgrader
	startTime    time.Time
}

// HandlerOptions carries the optional Handler dependencies.
type HandlerOptions struct {
	// Hub serves the live event feed. Nil disables it (503).
	Hub *ws.Hub

	// Ingest accepts proxy and extension pushes. Nil disables them (503).
	Ingest Ingestor

	Checks []ReadinessCheck

	// MaxBodyBytes caps JSON request bodies. Zero means 1 MiB.
	MaxBodyBytes int64

	// AllowedOrigins restricts websocket origins. Empty or "*" accepts any.
	AllowedOrigins []string
}

// NewHandler creates a handler over svc.
func NewHandler(svc Service, opts HandlerOptions) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		svc:          svc,
		hub:          opts.Hub,
		ingest:       opts.Ingest,
		checks:       opts.Checks,
		maxBodyBytes: opts.MaxBodyBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		startTime: time.Now(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func tenantParam(r *http.Request) string { return chi.URLParam(r, "tenant") }
