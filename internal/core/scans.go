// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/store"
)

// LastCompleteWindow is the most recent interval-aligned window ending at or
// before now. Scheduled scans use it so reruns hit the same window.
func LastCompleteWindow(now time.Time, interval time.Duration) models.Window {
	end := now.UTC().Truncate(interval)
	return models.Window{Start: end.Add(-interval), End: end}
}

// TriggerScan runs one scan for the tenant. A zero window scans the last
// complete scan interval. The result is returned even when err is set and
// the scan was partial.
func (s *Service) TriggerScan(ctx context.Context, tenantID string, w models.Window) (models.ScanResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return models.ScanResult{}, err
	}
	if w.Start.IsZero() && w.End.IsZero() {
		w = LastCompleteWindow(s.now(), s.scanner.Config().Interval)
	}
	ctx, _ = correlationID(ctx)

	res, err := s.scanner.Run(ctx, tenantID, w)
	if res.DiscoveriesCreated+res.DiscoveriesUpdated > 0 {
		s.onCommit()
	}
	return res, err
}

// ScanHistory returns the newest scan results for a tenant.
func (s *Service) ScanHistory(ctx context.Context, tenantID string, limit int) ([]models.ScanResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.ScanResult
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		out, err = tx.ScanResults(tenantID, limit)
		return err
	})
	return out, err
}
