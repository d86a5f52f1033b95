// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Outbox is the store side of the relay.
type Outbox interface {
	PendingEvents(ctx context.Context, limit int) ([]store.OutboxEntry, error)
	Ack(ctx context.Context, e store.OutboxEntry) error
	Nack(ctx context.Context, e store.OutboxEntry, cause error) error
}

// Relay drains the outbox into a Sink in commit order. A failed publish
// stops the batch so events for one entity are never reordered; the entry
// is retried on the next pass.
type Relay struct {
	outbox Outbox
	sink   Sink
	cfg    Config
	wake   chan struct{}
	log    *logging.EventLogger
}

// NewRelay creates a relay.
func NewRelay(outbox Outbox, sink Sink, cfg Config) *Relay {
	return &Relay{
		outbox: outbox,
		sink:   sink,
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
		log:    logging.NewEventLogger(),
	}
}

// Notify asks the relay to drain now instead of waiting for the next tick.
// It never blocks.
func (r *Relay) Notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Drain publishes pending entries until the outbox is empty or a publish
// fails. It returns the number of events published.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	published := 0
	start := time.Now()
	defer func() {
		if published > 0 {
			r.log.LogRelayBatch(ctx, published, time.Since(start))
		}
	}()
	for {
		entries, err := r.outbox.PendingEvents(ctx, r.cfg.BatchSize)
		if err != nil {
			return published, fmt.Errorf("read outbox: %w", err)
		}
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return published, err
			}
			entry := entries[i]
			if err := r.sink.Publish(ctx, entry.Event); err != nil {
				r.log.LogEventFailed(ctx, entry.Event.EventID, entry.Attempts+1, err)
				if nerr := r.outbox.Nack(ctx, entry, err); nerr != nil && !errors.Is(nerr, store.ErrEntryNotFound) {
					logging.Warn().Err(nerr).Str("event_id", entry.Event.EventID).Msg("failed to record publish attempt")
				}
				return published, fmt.Errorf("publish %s (attempt %d): %w", entry.Event.EventID, entry.Attempts+1, err)
			}
			if err := r.outbox.Ack(ctx, entry); err != nil && !errors.Is(err, store.ErrEntryNotFound) {
				// Published but not acked: it will be sent again and the
				// consumer deduplicates on event id.
				return published, fmt.Errorf("ack %s: %w", entry.Event.EventID, err)
			}
			r.log.LogEventPublished(ctx, entry.Event.EventID, entry.Event.EventType, entry.Event.Topic())
			published++
		}
		if len(entries) < r.cfg.BatchSize {
			return published, nil
		}
	}
}

// Serve runs the relay until ctx is canceled. It implements suture.Service.
func (r *Relay) Serve(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RelayInterval
	bo.MaxInterval = r.cfg.RelayMaxBackoff

	logging.Info().Dur("interval", r.cfg.RelayInterval).Int("batch_size", r.cfg.BatchSize).Msg("outbox relay started")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("outbox relay stopped")
			return ctx.Err()
		case <-timer.C:
		case <-r.wake:
			timer.Stop()
		}

		delay := r.cfg.RelayInterval
		_, err := r.Drain(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			continue
		case err != nil:
			delay = bo.NextBackOff()
			logging.Warn().Err(err).Dur("retry_in", delay).Msg("outbox relay publish failed")
		default:
			bo.Reset()
		}
		timer.Reset(delay)
	}
}

// String names the service in supervisor logs.
func (r *Relay) String() string {
	return "outbox-relay"
}
