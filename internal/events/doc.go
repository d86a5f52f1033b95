// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package events publishes lifecycle events with at-least-once delivery.

Lifecycle code never publishes directly. State changes and their events are
committed together into the store's outbox, and the Relay drains the outbox
into a Sink:

	store.Update(tx.Emit) -> outbox -> Relay -> Sink -> watermill publisher

Two transports are supported:

  - channel: Watermill gochannel pubsub, in-process only (tests, single node)
  - nats: NATS JetStream through watermill-nats, optionally against an
    embedded nats-server

Every message carries the event id as its Watermill UUID and as the
Nats-Msg-Id header, so JetStream drops duplicates inside the stream's
duplicate window. Consumers outside that window deduplicate on
models.Event.EventID or models.Event.DedupKey.

Publishing is guarded by a circuit breaker. While it is open the Relay backs
off and entries stay in the outbox; nothing is dropped.
*/
package events
