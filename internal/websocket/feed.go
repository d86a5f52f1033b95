// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package websocket

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/shadowscan/internal/events"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
)

// Feed bridges the event transport to the hub: every lifecycle event that
// reaches the stream is pushed to the owning tenant's websocket clients.
type Feed struct {
	hub   *Hub
	sub   message.Subscriber
	topic string
	log   *logging.EventLogger
}

// NewFeed subscribes hub to topic on sub.
func NewFeed(hub *Hub, sub message.Subscriber, topic string) *Feed {
	return &Feed{hub: hub, sub: sub, topic: topic, log: logging.NewEventLogger()}
}

// Serve consumes until ctx is canceled. It implements suture.Service; a
// closed subscription returns an error so the supervisor resubscribes.
func (f *Feed) Serve(ctx context.Context) error {
	messages, err := f.sub.Subscribe(ctx, f.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", f.topic, err)
	}
	f.log.LogSubscriptionStarted(f.topic)
	defer f.log.LogSubscriptionStopped(f.topic)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription %s closed", f.topic)
			}
			f.handle(ctx, msg)
		}
	}
}

// handle always acks: the live feed is best effort and a poison message
// must not block the subscription.
func (f *Feed) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	e, err := events.FromMessage(msg)
	if err != nil {
		metrics.FeedDropped.WithLabelValues("decode").Inc()
		f.log.LogEventDecodeFailed(ctx, msg.UUID, err)
		return
	}
	if f.hub.ClientCount(e.TenantID) == 0 {
		metrics.FeedDropped.WithLabelValues("no_clients").Inc()
		return
	}
	f.hub.BroadcastEvent(e)
}

func (f *Feed) String() string { return "event-feed" }
