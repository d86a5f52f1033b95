// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/shadowscan/internal/models"
	ws "github.com/tomtom215/shadowscan/internal/websocket"
)

func TestHealthLive(t *testing.T) {
	router := newTestRouter(&mockService{}, HandlerOptions{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.Status != "success" {
		t.Errorf("status = %q", env.Status)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     []ReadinessCheck
		wantStatus int
	}{
		{"no checks", nil, http.StatusOK},
		{"all ready", []ReadinessCheck{
			{Name: "store", Ready: func(context.Context) bool { return true }},
			{Name: "events", Ready: func(context.Context) bool { return true }},
		}, http.StatusOK},
		{"broker down", []ReadinessCheck{
			{Name: "store", Ready: func(context.Context) bool { return true }},
			{Name: "events", Ready: func(context.Context) bool { return false }},
		}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockService{}, HandlerOptions{Checks: tt.checks})
			rec, env := doRequest(t, router, http.MethodGet, "/api/v1/health/ready", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK && (env.Error == nil || env.Error.Code != ErrCodeNotReady) {
				t.Errorf("error = %+v", env.Error)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&mockService{}, HandlerOptions{})
	doRequest(t, router, http.MethodGet, "/api/v1/health/live", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output missing api_requests_total")
	}
}

func TestRouter_RequestIDAndNotFound(t *testing.T) {
	router := newTestRouter(&mockService{}, HandlerOptions{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if env.Metadata.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("metadata request_id = %q, header = %q", env.Metadata.RequestID, rec.Header().Get("X-Request-ID"))
	}
}

func TestRouter_RateLimit(t *testing.T) {
	h := NewHandler(&mockService{}, HandlerOptions{})
	router := NewRouter(h, RouterConfig{RateLimitReqs: 2, RateLimitWindow: time.Minute})

	var last int
	for i := 0; i < 3; i++ {
		rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/tenants/acme/risk-report", nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestEventFeed_Disabled(t *testing.T) {
	router := newTestRouter(&mockService{}, HandlerOptions{})
	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/tenants/acme/events/ws", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if env.Error == nil {
		t.Error("expected error envelope")
	}
}

func TestEventFeed_DeliversTenantEvents(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Serve(ctx) }()

	srv := httptest.NewServer(newTestRouter(&mockService{}, HandlerOptions{Hub: hub}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/tenants/acme/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount("acme") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastEvent(models.Event{EventID: "e-other", TenantID: "globex", EventType: models.EventDiscovered})
	hub.BroadcastEvent(models.Event{EventID: "e-1", TenantID: "acme", EventType: models.EventDiscovered})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string       `json:"type"`
		Data models.Event `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != ws.MessageTypeEvent || msg.Data.EventID != "e-1" {
		t.Errorf("message = %+v, want acme event e-1", msg)
	}
}
