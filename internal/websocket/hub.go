// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
)

// Message types.
const (
	MessageTypeEvent = "lifecycle_event"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
)

// Message is one frame sent to a client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type broadcast struct {
	tenantID string
	msg      Message
}

// Hub tracks connected clients and fans tenant events out to them. A
// client only ever receives its own tenant's events.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan broadcast
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a Hub. Run it with Serve.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan broadcast, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Serve runs the hub until ctx is canceled, then closes every client. It
// implements suture.Service.
//
// Lifecycle changes are handled before broadcasts so a client registered
// ahead of an event always sees it.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.Register:
			h.add(c)
			continue
		case c := <-h.Unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

func (h *Hub) String() string { return "websocket-hub" }

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Str("tenant_id", c.tenantID).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Str("tenant_id", c.tenantID).Int("total_clients", n).Msg("websocket client disconnected")
}

// deliver sends to the tenant's clients in id order. A client whose buffer
// is full is dropped.
func (h *Hub) deliver(b broadcast) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.tenantID == b.tenantID {
			targets = append(targets, c)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, c := range targets {
		select {
		case c.send <- b.msg:
			metrics.WSMessagesSent.Inc()
		default:
			close(c.send)
			delete(h.clients, c)
			logging.Warn().Str("tenant_id", c.tenantID).Uint64("client_id", c.id).Msg("websocket client too slow, dropped")
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	ids := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		ids = append(ids, c)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].id < ids[j].id })
	for _, c := range ids {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	metrics.WSConnections.Set(0)
	logging.Info().Str("component", "websocket-hub").Int("clients_closed", len(ids)).Msg("websocket hub stopped")
}

// BroadcastEvent queues e for the clients of e's tenant. It never blocks;
// when the queue is full the event is dropped from the live feed (it is
// still in the outbox and on the stream).
func (h *Hub) BroadcastEvent(e models.Event) bool {
	select {
	case h.broadcast <- broadcast{tenantID: e.TenantID, msg: Message{Type: MessageTypeEvent, Data: e}}:
		return true
	default:
		metrics.FeedDropped.WithLabelValues("queue_full").Inc()
		return false
	}
}

// ClientCount returns the number of connected clients, optionally for one
// tenant.
func (h *Hub) ClientCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if tenantID == "" {
		return len(h.clients)
	}
	n := 0
	for c := range h.clients {
		if c.tenantID == tenantID {
			n++
		}
	}
	return n
}

// MarshalMessage encodes msg for the wire.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
