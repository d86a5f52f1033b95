// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package services

import (
	"context"
	"time"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/store"
)

// MaintainedStore is the part of *store.Store the maintenance loop needs.
type MaintainedStore interface {
	RunGC() error
	Stats(ctx context.Context) (store.OutboxStats, error)
}

// StoreMaintenanceService refreshes the outbox gauges and runs value log
// GC. A zero gcInterval disables GC; the stats still refresh every minute.
type StoreMaintenanceService struct {
	store      MaintainedStore
	gcInterval time.Duration
	name       string
}

const statsInterval = time.Minute

func NewStoreMaintenanceService(s MaintainedStore, gcInterval time.Duration) *StoreMaintenanceService {
	return &StoreMaintenanceService{store: s, gcInterval: gcInterval, name: "store-maintenance"}
}

// Serve implements suture.Service.
func (m *StoreMaintenanceService) Serve(ctx context.Context) error {
	var gcTick <-chan time.Time
	if m.gcInterval > 0 {
		t := time.NewTicker(m.gcInterval)
		defer t.Stop()
		gcTick = t.C
	}

	return runEvery(ctx, statsInterval, func(ctx context.Context) {
		select {
		case <-gcTick:
			m.gc()
		default:
		}
		m.stats(ctx)
	})
}

func (m *StoreMaintenanceService) gc() {
	start := time.Now()
	if err := m.store.RunGC(); err != nil {
		logging.Warn().Err(err).Msg("Value log GC failed")
		return
	}
	logging.Debug().Dur("elapsed", time.Since(start)).Msg("Value log GC completed")
}

func (m *StoreMaintenanceService) stats(ctx context.Context) {
	st, err := m.store.Stats(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Outbox stats failed")
		return
	}
	if st.Pending > 0 {
		logging.Debug().Int("pending", st.Pending).Int("sent", st.Sent).Msg("Outbox backlog")
	}
}

func (m *StoreMaintenanceService) String() string {
	return m.name
}
