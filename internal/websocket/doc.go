// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package websocket streams lifecycle events to dashboard clients.

A Hub owns the set of connected clients, each bound to one tenant when it
connects. A Feed subscribes to the event transport and hands every decoded
event to the hub, which forwards it only to that tenant's clients.

	hub := websocket.NewHub()
	feed := websocket.NewFeed(hub, transport.Subscriber, transport.FeedTopic())
	tree.AddMessagingService(hub)
	tree.AddMessagingService(feed)

The feed is best effort. Slow clients are disconnected, and an event that
cannot be queued is counted in shadowscan_feed_dropped_total. The outbox
and the stream remain the durable record.

Wire format:

	{"type": "lifecycle_event", "data": {"event_id": "...", "event_type": "shadow_ai.assessed", ...}}

Clients may send {"type":"ping"} and receive {"type":"pong"}.
*/
package websocket
