// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/core"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
)

// mockService records calls and returns canned results.
type mockService struct {
	mu    sync.Mutex
	calls []string

	err error

	discovery  models.Discovery
	plan       models.MigrationPlan
	page       core.DiscoveryPage
	scan       models.ScanResult
	history    []models.ScanResult
	report     risk.Report
	dashboard  models.Dashboard
	lastFilter models.DiscoveryFilter
	lastWindow models.Window
	lastNote   string
	lastDec    core.ApprovalDecision
	lastStep   string
	lastDays   int
	lastLimit  int
	lastTenant string
	lastID     string
}

func (m *mockService) record(name, tenantID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	m.lastTenant = tenantID
	m.lastID = id
}

func (m *mockService) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockService) TriggerScan(_ context.Context, tenantID string, w models.Window) (models.ScanResult, error) {
	m.record("TriggerScan", tenantID, "")
	m.mu.Lock()
	m.lastWindow = w
	m.mu.Unlock()
	return m.scan, m.err
}

func (m *mockService) ScanHistory(_ context.Context, tenantID string, limit int) ([]models.ScanResult, error) {
	m.record("ScanHistory", tenantID, "")
	m.mu.Lock()
	m.lastLimit = limit
	m.mu.Unlock()
	return m.history, m.err
}

func (m *mockService) ListDiscoveries(_ context.Context, tenantID string, f models.DiscoveryFilter) (core.DiscoveryPage, error) {
	m.record("ListDiscoveries", tenantID, "")
	m.mu.Lock()
	m.lastFilter = f
	m.mu.Unlock()
	return m.page, m.err
}

func (m *mockService) GetDiscovery(_ context.Context, tenantID, id string) (models.Discovery, error) {
	m.record("GetDiscovery", tenantID, id)
	return m.discovery, m.err
}

func (m *mockService) Assess(_ context.Context, tenantID, id string) (models.Discovery, error) {
	m.record("Assess", tenantID, id)
	return m.discovery, m.err
}

func (m *mockService) RecordNotification(_ context.Context, tenantID, id string) (models.Discovery, error) {
	m.record("RecordNotification", tenantID, id)
	return m.discovery, m.err
}

func (m *mockService) Dismiss(_ context.Context, tenantID, id, note string) (models.Discovery, error) {
	m.record("Dismiss", tenantID, id)
	m.mu.Lock()
	m.lastNote = note
	m.mu.Unlock()
	return m.discovery, m.err
}

func (m *mockService) StartMigration(_ context.Context, tenantID, discoveryID string) (models.MigrationPlan, error) {
	m.record("StartMigration", tenantID, discoveryID)
	return m.plan, m.err
}

func (m *mockService) RollbackMigration(_ context.Context, tenantID, discoveryID, note string) (models.Discovery, error) {
	m.record("RollbackMigration", tenantID, discoveryID)
	m.mu.Lock()
	m.lastNote = note
	m.mu.Unlock()
	return m.discovery, m.err
}

func (m *mockService) GetPlan(_ context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	m.record("GetPlan", tenantID, planID)
	return m.plan, m.err
}

func (m *mockService) ApprovalCallback(_ context.Context, tenantID, planID string, dec core.ApprovalDecision) (models.MigrationPlan, error) {
	m.record("ApprovalCallback", tenantID, planID)
	m.mu.Lock()
	m.lastDec = dec
	m.mu.Unlock()
	return m.plan, m.err
}

func (m *mockService) StartPlanWork(_ context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	m.record("StartPlanWork", tenantID, planID)
	return m.plan, m.err
}

func (m *mockService) CompletePlan(_ context.Context, tenantID, planID string) (models.MigrationPlan, error) {
	m.record("CompletePlan", tenantID, planID)
	return m.plan, m.err
}

func (m *mockService) CompleteStep(_ context.Context, tenantID, planID, step string) (models.MigrationPlan, error) {
	m.record("CompleteStep", tenantID, planID)
	m.mu.Lock()
	m.lastStep = step
	m.mu.Unlock()
	return m.plan, m.err
}

func (m *mockService) RiskReport(_ context.Context, tenantID string) (risk.Report, error) {
	m.record("RiskReport", tenantID, "")
	return m.report, m.err
}

func (m *mockService) Dashboard(_ context.Context, tenantID string, days int) (models.Dashboard, error) {
	m.record("Dashboard", tenantID, "")
	m.mu.Lock()
	m.lastDays = days
	m.mu.Unlock()
	return m.dashboard, m.err
}

// envelope mirrors models.APIResponse with raw data for decoding in tests.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func newTestRouter(svc Service, opts HandlerOptions) http.Handler {
	return NewRouter(NewHandler(svc, opts), RouterConfig{
		RateLimitDisabled: true,
		RequestTimeout:    5 * time.Second,
	})
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}
