// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/shadowscan/internal/core"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
)

// ScanRunner is the part of core.Service the scheduler uses.
type ScanRunner interface {
	TriggerScan(ctx context.Context, tenantID string, w models.Window) (models.ScanResult, error)
	ListDiscoveries(ctx context.Context, tenantID string, f models.DiscoveryFilter) (core.DiscoveryPage, error)
	Assess(ctx context.Context, tenantID, id string) (models.Discovery, error)
}

// ScanSchedulerConfig drives the periodic scan.
type ScanSchedulerConfig struct {
	Tenants    []string
	Interval   time.Duration
	Timeout    time.Duration
	AutoAssess bool
}

// ScanScheduler scans every configured tenant once per interval, over the
// last complete window. With AutoAssess, discoveries still in detected
// are assessed right after their tenant's scan.
type ScanScheduler struct {
	runner ScanRunner
	cfg    ScanSchedulerConfig
	name   string
}

// NewScanScheduler creates the scheduler.
func NewScanScheduler(runner ScanRunner, cfg ScanSchedulerConfig) *ScanScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &ScanScheduler{runner: runner, cfg: cfg, name: "scan-scheduler"}
}

// Serve implements suture.Service. Scan failures are logged and retried on
// the next tick; they never stop the service.
func (s *ScanScheduler) Serve(ctx context.Context) error {
	if len(s.cfg.Tenants) == 0 {
		logging.Info().Msg("No scan tenants configured, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}
	return runEvery(ctx, s.cfg.Interval, s.RunOnce)
}

// RunOnce scans every tenant sequentially.
func (s *ScanScheduler) RunOnce(ctx context.Context) {
	for _, tenant := range s.cfg.Tenants {
		if ctx.Err() != nil {
			return
		}
		s.scanTenant(ctx, tenant)
	}
}

func (s *ScanScheduler) scanTenant(ctx context.Context, tenant string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	ctx = logging.ContextWithTenantID(ctx, tenant)

	res, err := s.runner.TriggerScan(ctx, tenant, models.Window{})
	if err != nil {
		logging.CtxErr(ctx, err).
			Bool("partial", res.Partial).
			Int("batches", res.Batches).
			Msg("Scheduled scan failed")
		if !res.Partial {
			return
		}
	} else {
		logging.CtxInfo(ctx).
			Str("scan_id", res.ID).
			Int64("observations", res.ObservationCount).
			Int("created", res.DiscoveriesCreated).
			Int("updated", res.DiscoveriesUpdated).
			Msg("Scheduled scan completed")
	}

	if s.cfg.AutoAssess {
		s.assessDetected(ctx, tenant)
	}
}

// assessDetected assesses every detected discovery of the tenant. The
// governance service being down ends the pass; it is retried next tick.
func (s *ScanScheduler) assessDetected(ctx context.Context, tenant string) {
	page, err := s.runner.ListDiscoveries(ctx, tenant, models.DiscoveryFilter{
		Statuses: []models.DiscoveryStatus{models.StatusDetected},
		Limit:    core.MaxPageSize,
	})
	if err != nil {
		logging.CtxErr(ctx, err).Msg("List detected discoveries failed")
		return
	}

	assessed := 0
	for _, d := range page.Items {
		if _, err := s.runner.Assess(ctx, tenant, d.ID); err != nil {
			if errors.Is(err, models.ErrUpstreamUnavailable) || ctx.Err() != nil {
				logging.CtxWarn(ctx).Err(err).Int("assessed", assessed).Msg("Auto-assessment interrupted")
				return
			}
			// A concurrent operation got there first.
			if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrInvalidTransition) {
				continue
			}
			logging.CtxErr(ctx, err).Str("discovery_id", d.ID).Msg("Auto-assessment failed")
			continue
		}
		assessed++
	}
	if assessed > 0 {
		logging.CtxInfo(ctx).Int("assessed", assessed).Msg("Auto-assessed detected discoveries")
	}
}

func (s *ScanScheduler) String() string {
	return s.name
}
