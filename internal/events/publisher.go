// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package events

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

// Sink accepts lifecycle events for delivery.
type Sink interface {
	Publish(ctx context.Context, e models.Event) error
}

// TopicFunc maps an event to its publish topic.
type TopicFunc func(e *models.Event) string

// Publisher is a Sink over a Watermill publisher with circuit breaker
// protection.
type Publisher struct {
	publisher message.Publisher
	topic     TopicFunc
	cb        *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

var _ Sink = (*Publisher)(nil)

// NewPublisher wraps pub. A nil topic publishes to models.Event.Topic.
func NewPublisher(pub message.Publisher, topic TopicFunc, cfg Config) *Publisher {
	if topic == nil {
		topic = func(e *models.Event) string { return e.Topic() }
	}
	const name = "event-publisher"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("event publisher breaker state changed")
			metrics.RecordBreakerTransition(name, from, to)
		},
	})

	return &Publisher{publisher: pub, topic: topic, cb: cb}
}

// Publish sends one event. Watermill publishers do not take a context, so
// ctx is only checked before the send.
func (p *Publisher) Publish(ctx context.Context, e models.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := ToMessage(&e)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	_, err = p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(p.topic(&e), msg)
	})
	if err != nil {
		metrics.EventPublishFailures.Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(e.EventType).Inc()
	return nil
}

// State returns the breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// Close stops accepting events. The Transport owns the underlying publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
