// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/shadowscan/internal/api"
	"github.com/tomtom215/shadowscan/internal/config"
	"github.com/tomtom215/shadowscan/internal/core"
	"github.com/tomtom215/shadowscan/internal/events"
	"github.com/tomtom215/shadowscan/internal/ingest"
	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
	"github.com/tomtom215/shadowscan/internal/supervisor"
	"github.com/tomtom215/shadowscan/internal/supervisor/services"
	"github.com/tomtom215/shadowscan/internal/upstream"
	ws "github.com/tomtom215/shadowscan/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Shadowscan failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging)

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("store_path", cfg.Store.Path).
		Str("events_transport", cfg.Events.Transport).
		Strs("scan_tenants", cfg.Scan.Tenants).
		Msg("Configuration loaded")
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS before exposing the API")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// Event transport and outbox relay
	transport, err := events.Open(ctx, cfg.Events, events.NewLogger())
	if err != nil {
		return fmt.Errorf("open event transport: %w", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close event transport")
		}
	}()
	publisher := events.NewPublisher(transport.Publisher, transport.Topic, cfg.Events)
	relay := events.NewRelay(st, publisher, cfg.Events)

	// Collaborators
	httpClient := &http.Client{}
	metadata := upstream.NewMetadataClient(cfg.Upstream.Metadata, httpClient)
	var catalog migration.Catalog = upstream.NewCatalogClient(cfg.Upstream.Catalog, httpClient)
	if cfg.Upstream.CatalogCacheTTL > 0 {
		catalog = upstream.NewCachedCatalog(catalog, cfg.Upstream.CatalogCacheTTL)
	}
	approvals := upstream.NewApprovalClient(cfg.Upstream.Approvals, httpClient)
	var evaluator core.Evaluator
	if cfg.Upstream.Governance.URL != "" {
		evaluator = upstream.NewGovernanceClient(cfg.Upstream.Governance, httpClient)
	} else {
		logging.Warn().Msg("Governance service not configured; assessments rescore stored inputs only")
	}

	// Domain
	cls, err := cfg.Classifier.Build()
	if err != nil {
		return err
	}
	assessor, err := risk.NewAssessor(cfg.Risk)
	if err != nil {
		return err
	}
	receiver, err := ingest.NewReceiver(cfg.Ingest, cls, st)
	if err != nil {
		return err
	}
	if cfg.Ingest.APIKey == "" {
		logging.Warn().Msg("Push ingestion accepts unauthenticated events; set INGEST_API_KEY")
	}
	if cfg.Ingest.SourceKey == "" {
		logging.Warn().Msg("INGEST_SOURCE_KEY not set; proxy client pseudonyms change on restart")
	}
	scanner, err := scan.NewScanner(cfg.Scan, cls, assessor, st, ingest.NewSource(metadata, st))
	if err != nil {
		return err
	}
	locks := lifecycle.NewLocks()
	workflow, err := migration.NewWorkflow(cfg.Migration, st, catalog, approvals, assessor, locks)
	if err != nil {
		return err
	}
	svc, err := core.New(core.Deps{
		Repo:      st,
		Scanner:   scanner,
		Workflow:  workflow,
		Assessor:  assessor,
		Evaluator: evaluator,
		Locks:     locks,
		OnCommit:  relay.Notify,
	})
	if err != nil {
		return err
	}
	logging.Info().Int("signatures", cls.Registry().Len()).Msg("Classifier ready")

	// HTTP
	hub := ws.NewHub()
	handler := api.NewHandler(svc, api.HandlerOptions{
		Hub:            hub,
		Ingest:         receiver,
		MaxBodyBytes:   cfg.API.MaxBodyBytes,
		AllowedOrigins: cfg.API.CORSOrigins,
		Checks: []api.ReadinessCheck{
			{Name: "store", Ready: func(ctx context.Context) bool {
				return st.View(ctx, func(*store.Txn) error { return nil }) == nil
			}},
			{Name: "events", Ready: func(context.Context) bool { return transport.Healthy() }},
		},
	})
	server := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewRouter(handler, api.RouterConfig{
			CORSOrigins:       cfg.API.CORSOrigins,
			RateLimitReqs:     cfg.API.RateLimitReqs,
			RateLimitWindow:   cfg.API.RateLimitWindow,
			RateLimitDisabled: cfg.API.RateLimitDisabled,
			RequestTimeout:    cfg.API.RequestTimeout,
			IngestKey:         cfg.Ingest.APIKey,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewStoreMaintenanceService(st, st.GCInterval()))

	tree.AddMessagingService(relay)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(ws.NewFeed(hub, transport.Subscriber, transport.FeedTopic()))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewScanScheduler(svc, services.ScanSchedulerConfig{
		Tenants:    cfg.Scan.Tenants,
		Interval:   cfg.Scan.Interval,
		Timeout:    cfg.Scan.Timeout,
		AutoAssess: cfg.Scan.AutoAssess,
	}))
	tree.AddAPIService(services.NewExpirySweeperService(svc, cfg.Migration.SweepInterval))

	if path := config.ConfigFile(); path != "" {
		watchLogLevel(path)
	}

	// === START ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// errCh yields exactly one value when the root supervisor returns.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("Service failed to stop")
	}
	return nil
}

// watchLogLevel re-reads the config file on change and applies a new log
// level. Other settings need a restart.
func watchLogLevel(path string) {
	err := config.WatchConfigFile(path, func() {
		next, err := config.LoadFile(path)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config change")
			return
		}
		logging.SetLevelString(next.Logging.Level)
		logging.Info().Str("level", next.Logging.Level).Msg("Log level reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
