// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
)

// t0 is a recent hour so event timestamps stay inside the retention.
var t0 = time.Now().UTC().Truncate(time.Hour).Add(-2 * time.Hour)

func window() models.Window {
	return models.Window{Start: t0, End: t0.Add(time.Hour)}
}

func testClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	reg, err := classifier.NewRegistry(classifier.DefaultSignatures())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	creds, err := classifier.NewCredentialMatcher(nil)
	if err != nil {
		t.Fatalf("NewCredentialMatcher: %v", err)
	}
	return classifier.New(reg, creds)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestReceiver(t *testing.T, st *store.Store, mutate func(*Config)) *Receiver {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SourceKey = "test-key"
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := NewReceiver(cfg, testClassifier(t), st)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	return r
}

// buffered drains the pushed buffer for acme in the test window.
func buffered(t *testing.T, st *store.Store) []models.RawObservation {
	t.Helper()
	src := NewSource(nil, st)
	var (
		out    []models.RawObservation
		cursor string
	)
	for i := 0; i < 100; i++ {
		b, err := src.Fetch(context.Background(), "acme", window(), cursor, 2)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		out = append(out, b.Observations...)
		if b.NextCursor == "" {
			return out
		}
		cursor = b.NextCursor
	}
	t.Fatal("buffer paging did not terminate")
	return nil
}

func proxyEvent(ip, host string, at time.Time) ProxyEvent {
	return ProxyEvent{
		DestinationHost: host,
		DestinationPort: 443,
		SourceIP:        ip,
		Protocol:        "CONNECT",
		Timestamp:       at,
		ProxySource:     "squid-edge-1",
	}
}

func TestAcceptProxyEvent_BuffersPseudonymisedObservation(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, nil)

	rec, err := r.AcceptProxyEvent(context.Background(), "acme", proxyEvent("10.1.2.3", "API.OpenAI.com.", t0.Add(5*time.Minute)))
	if err != nil {
		t.Fatalf("AcceptProxyEvent: %v", err)
	}
	if !rec.Matched || rec.ToolID != "openai-api" || rec.EventID == "" {
		t.Errorf("receipt = %+v, want matched openai-api with an id", rec)
	}

	got := buffered(t, st)
	if len(got) != 1 {
		t.Fatalf("buffered = %d, want 1", len(got))
	}
	o := got[0]
	if o.Host != "api.openai.com" || o.Method != models.MethodConnectTunnel {
		t.Errorf("observation = %s via %s, want api.openai.com via connect-tunnel", o.Host, o.Method)
	}
	if !strings.HasPrefix(o.SourceID, "ip-") || strings.Contains(o.SourceID, "10.1.2.3") {
		t.Errorf("SourceID = %q, want a pseudonym", o.SourceID)
	}
}

func TestAcceptProxyEvent_PseudonymStablePerTenant(t *testing.T) {
	r := newTestReceiver(t, openStore(t), nil)

	a := r.pseudonym("acme", "10.0.0.1")
	if b := r.pseudonym("acme", " 10.0.0.1 "); a != b {
		t.Errorf("pseudonym not stable: %q vs %q", a, b)
	}
	if b := r.pseudonym("globex", "10.0.0.1"); a == b {
		t.Error("same address in two tenants shares a pseudonym")
	}
	if b := r.pseudonym("acme", "10.0.0.2"); a == b {
		t.Error("two addresses share a pseudonym")
	}
}

func TestAcceptProxyEvent_ProtocolMapping(t *testing.T) {
	tests := []struct {
		protocol string
		want     models.DetectionMethod
	}{
		{"CONNECT", models.MethodConnectTunnel},
		{"https", models.MethodSNI},
		{"HTTP", models.MethodDNS},
	}
	for _, tt := range tests {
		t.Run(tt.protocol, func(t *testing.T) {
			st := openStore(t)
			r := newTestReceiver(t, st, nil)
			ev := proxyEvent("10.0.0.9", "claude.ai", t0.Add(time.Minute))
			ev.Protocol = tt.protocol
			if _, err := r.AcceptProxyEvent(context.Background(), "acme", ev); err != nil {
				t.Fatalf("AcceptProxyEvent: %v", err)
			}
			got := buffered(t, st)
			if len(got) != 1 || got[0].Method != tt.want {
				t.Errorf("buffered = %+v, want one via %s", got, tt.want)
			}
		})
	}
}

func TestAcceptProxyEvent_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProxyEvent)
		field  string
	}{
		{"unknown protocol", func(e *ProxyEvent) { e.Protocol = "FTP" }, "protocol"},
		{"missing source ip", func(e *ProxyEvent) { e.SourceIP = " " }, "source_ip"},
		{"missing timestamp", func(e *ProxyEvent) { e.Timestamp = time.Time{} }, "timestamp"},
		{"future timestamp", func(e *ProxyEvent) { e.Timestamp = time.Now().Add(time.Hour) }, "timestamp"},
		{"beyond retention", func(e *ProxyEvent) { e.Timestamp = time.Now().Add(-8 * 24 * time.Hour) }, "timestamp"},
		{"unusable host", func(e *ProxyEvent) { e.DestinationHost = "" }, "event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := openStore(t)
			r := newTestReceiver(t, st, nil)
			ev := proxyEvent("10.0.0.1", "api.openai.com", t0)
			tt.mutate(&ev)

			before := testutil.ToFloat64(metrics.IngestEvents.WithLabelValues(SourceProxy, "rejected"))
			_, err := r.AcceptProxyEvent(context.Background(), "acme", ev)
			var verr *models.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tt.field)
			}
			if after := testutil.ToFloat64(metrics.IngestEvents.WithLabelValues(SourceProxy, "rejected")); after != before+1 {
				t.Errorf("rejected counter moved by %v, want 1", after-before)
			}
			if got := buffered(t, st); len(got) != 0 {
				t.Errorf("buffered = %d, want 0", len(got))
			}
		})
	}
}

func TestAccept_UnknownHostIsAcknowledgedNotBuffered(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, nil)

	rec, err := r.AcceptProxyEvent(context.Background(), "acme", proxyEvent("10.0.0.1", "intranet.example.com", t0))
	if err != nil {
		t.Fatalf("AcceptProxyEvent: %v", err)
	}
	if rec.Matched || rec.EventID == "" {
		t.Errorf("receipt = %+v, want unmatched with an id", rec)
	}
	if got := buffered(t, st); len(got) != 0 {
		t.Errorf("buffered = %d, want 0", len(got))
	}
}

func TestAcceptExtensionEvent_DedupWindow(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, nil)
	ctx := context.Background()
	ev := ExtensionEvent{SourceID: "ext-42", ToolDomain: "claude.ai", BrowserFamily: "chrome", Timestamp: t0.Add(time.Minute)}

	first, err := r.AcceptExtensionEvent(ctx, "acme", ev)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	ev.Timestamp = t0.Add(2 * time.Minute)
	second, err := r.AcceptExtensionEvent(ctx, "acme", ev)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	ev.SourceID = "ext-43"
	other, err := r.AcceptExtensionEvent(ctx, "acme", ev)
	if err != nil {
		t.Fatalf("other source: %v", err)
	}

	if first.Duplicate || !second.Duplicate || other.Duplicate {
		t.Errorf("duplicate flags = %v/%v/%v, want false/true/false", first.Duplicate, second.Duplicate, other.Duplicate)
	}
	got := buffered(t, st)
	if len(got) != 2 {
		t.Fatalf("buffered = %d, want 2", len(got))
	}
	for _, o := range got {
		if o.Method != models.MethodBrowserNavigation {
			t.Errorf("method = %s, want browser-navigation", o.Method)
		}
	}
}

func TestAcceptExtensionEvent_DedupDisabled(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, func(c *Config) { c.DedupWindow = 0 })
	ev := ExtensionEvent{SourceID: "ext-42", ToolDomain: "claude.ai", Timestamp: t0}

	for i := 0; i < 3; i++ {
		rec, err := r.AcceptExtensionEvent(context.Background(), "acme", ev)
		if err != nil {
			t.Fatalf("accept %d: %v", i, err)
		}
		if rec.Duplicate {
			t.Errorf("accept %d flagged duplicate with dedup off", i)
		}
	}
	if got := buffered(t, st); len(got) != 3 {
		t.Errorf("buffered = %d, want 3", len(got))
	}
}

func TestAcceptExtensionEvent_RequiresSource(t *testing.T) {
	r := newTestReceiver(t, openStore(t), nil)
	_, err := r.AcceptExtensionEvent(context.Background(), "acme", ExtensionEvent{ToolDomain: "claude.ai", Timestamp: t0})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "source_id" {
		t.Errorf("err = %v, want ValidationError on source_id", err)
	}
}

func TestNewReceiver_Validates(t *testing.T) {
	st := openStore(t)
	cls := testClassifier(t)

	tests := []struct {
		name string
		cfg  Config
		cls  *classifier.Classifier
		repo store.Repository
	}{
		{"zero retention", Config{}, cls, st},
		{"negative dedup", Config{Retention: time.Hour, DedupWindow: -time.Second}, cls, st},
		{"negative skew", Config{Retention: time.Hour, MaxClockSkew: -time.Second}, cls, st},
		{"no classifier", DefaultConfig(), nil, st},
		{"no store", DefaultConfig(), cls, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReceiver(tt.cfg, tt.cls, tt.repo)
			var cerr *models.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Errorf("err = %v, want *ConfigurationError", err)
			}
		})
	}
}

// pagedUpstream serves fixed pages; cursor "N" addresses page N.
type pagedUpstream struct {
	mu      sync.Mutex
	pages   [][]models.RawObservation
	cursors []string
	err     error
}

func (p *pagedUpstream) Fetch(_ context.Context, _ string, _ models.Window, cursor string, _ int) (scan.Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursors = append(p.cursors, cursor)
	if p.err != nil {
		return scan.Batch{}, p.err
	}
	idx := 0
	if cursor != "" {
		idx = int(cursor[0] - '0')
	}
	if idx >= len(p.pages) {
		return scan.Batch{}, nil
	}
	b := scan.Batch{Observations: p.pages[idx]}
	if idx+1 < len(p.pages) {
		b.NextCursor = string(rune('0' + idx + 1))
	}
	return b, nil
}

func TestSource_UpstreamThenBuffer(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, nil)
	if _, err := r.AcceptProxyEvent(context.Background(), "acme", proxyEvent("10.0.0.1", "api.openai.com", t0.Add(time.Minute))); err != nil {
		t.Fatalf("AcceptProxyEvent: %v", err)
	}

	up := &pagedUpstream{pages: [][]models.RawObservation{
		{{TenantID: "acme", SourceID: "u1", Host: "claude.ai", Method: models.MethodDNS, Timestamp: t0}},
		{{TenantID: "acme", SourceID: "u2", Host: "claude.ai", Method: models.MethodSNI, Timestamp: t0}},
	}}
	src := NewSource(up, st)

	var (
		hosts  []string
		cursor string
	)
	for i := 0; i < 10; i++ {
		b, err := src.Fetch(context.Background(), "acme", window(), cursor, 10)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		for _, o := range b.Observations {
			hosts = append(hosts, o.Host)
		}
		if b.NextCursor == "" {
			break
		}
		if b.NextCursor == cursor {
			t.Fatalf("cursor did not advance from %q", cursor)
		}
		cursor = b.NextCursor
	}

	want := []string{"claude.ai", "claude.ai", "api.openai.com"}
	if strings.Join(hosts, ",") != strings.Join(want, ",") {
		t.Errorf("hosts = %v, want %v", hosts, want)
	}
	up.mu.Lock()
	defer up.mu.Unlock()
	if len(up.cursors) != 2 || up.cursors[0] != "" || up.cursors[1] != "1" {
		t.Errorf("upstream cursors = %q, want [\"\" \"1\"]", up.cursors)
	}
}

func TestSource_UpstreamErrorStops(t *testing.T) {
	boom := errors.New("collector down")
	src := NewSource(&pagedUpstream{err: boom}, openStore(t))
	if _, err := src.Fetch(context.Background(), "acme", window(), "", 10); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestSource_ScanCountsPushedObservations(t *testing.T) {
	st := openStore(t)
	r := newTestReceiver(t, st, nil)
	ctx := context.Background()

	if _, err := r.AcceptProxyEvent(ctx, "acme", proxyEvent("10.0.0.7", "claude.ai", t0.Add(10*time.Minute))); err != nil {
		t.Fatalf("AcceptProxyEvent: %v", err)
	}
	if _, err := r.AcceptExtensionEvent(ctx, "acme", ExtensionEvent{SourceID: "ext-1", ToolDomain: "claude.ai", Timestamp: t0.Add(20 * time.Minute)}); err != nil {
		t.Fatalf("AcceptExtensionEvent: %v", err)
	}
	up := &pagedUpstream{pages: [][]models.RawObservation{
		{{TenantID: "acme", SourceID: "ext-1", Host: "claude.ai", Method: models.MethodDNS, Timestamp: t0.Add(5 * time.Minute)}},
	}}

	cfg := scan.DefaultConfig()
	cfg.Population = models.PopulationEnterprise
	a, err := risk.NewAssessor(risk.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAssessor: %v", err)
	}
	s, err := scan.NewScanner(cfg, testClassifier(t), a, st, NewSource(up, st))
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	for run := 0; run < 2; run++ {
		res, err := s.Run(ctx, "acme", window())
		if err != nil {
			t.Fatalf("Run %d: %v", run, err)
		}
		if res.MatchedCount != 3 {
			t.Errorf("run %d matched = %d, want 3", run, res.MatchedCount)
		}
	}

	var list []models.Discovery
	err = st.View(ctx, func(tx *store.Txn) error {
		var err error
		list, err = tx.Discoveries("acme")
		return err
	})
	if err != nil {
		t.Fatalf("Discoveries: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("discoveries = %d, want 1", len(list))
	}
	d := list[0]
	if d.Frequency != 3 {
		t.Errorf("frequency = %d, want 3 after a rerun", d.Frequency)
	}
	methods := map[models.DetectionMethod]bool{}
	for _, m := range d.Methods {
		methods[m] = true
	}
	for _, want := range []models.DetectionMethod{models.MethodDNS, models.MethodConnectTunnel, models.MethodBrowserNavigation} {
		if !methods[want] {
			t.Errorf("methods = %v, missing %s", d.Methods, want)
		}
	}
}
