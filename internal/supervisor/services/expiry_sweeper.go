// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package services

import (
	"context"
	"time"

	"github.com/tomtom215/shadowscan/internal/logging"
)

// Sweeper expires migration plans past their horizon.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpirySweeperService runs the plan expiry sweep on a fixed interval.
type ExpirySweeperService struct {
	sweeper  Sweeper
	interval time.Duration
	name     string
}

func NewExpirySweeperService(sweeper Sweeper, interval time.Duration) *ExpirySweeperService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ExpirySweeperService{sweeper: sweeper, interval: interval, name: "expiry-sweeper"}
}

// Serve implements suture.Service.
func (e *ExpirySweeperService) Serve(ctx context.Context) error {
	return runEvery(ctx, e.interval, func(ctx context.Context) {
		n, err := e.sweeper.SweepExpired(ctx)
		if err != nil {
			logging.Error().Err(err).Int("expired", n).Msg("Plan expiry sweep failed")
			return
		}
		if n > 0 {
			logging.Info().Int("expired", n).Msg("Expired migration plans")
		}
	})
}

func (e *ExpirySweeperService) String() string {
	return e.name
}
