// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shadowscan/internal/cache"
	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Push sources, used as metric and log labels.
const (
	SourceProxy     = "proxy"
	SourceExtension = "extension"
)

// pruneEvery is how many accepted events pass between dedup cache sweeps.
const pruneEvery = 1024

// ProxyEvent is one connection reported by a forward proxy.
type ProxyEvent struct {
	DestinationHost string
	DestinationPort int
	// SourceIP is pseudonymised on arrival and never stored.
	SourceIP    string
	Protocol    string // CONNECT, HTTPS or HTTP
	BytesSent   int64
	Timestamp   time.Time
	ProxySource string
	Department  string
}

// ExtensionEvent is one navigation reported by the browser extension.
type ExtensionEvent struct {
	SourceID         string
	ToolDomain       string
	BrowserFamily    string
	ExtensionVersion string
	SessionSeconds   int
	Timestamp        time.Time
	Department       string
}

// Receipt acknowledges a pushed event.
type Receipt struct {
	EventID   string `json:"event_id"`
	Matched   bool   `json:"matched"`
	ToolID    string `json:"tool_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Receiver classifies pushed events and buffers the matched ones.
type Receiver struct {
	cfg      Config
	cls      *classifier.Classifier
	repo     store.Repository
	seen     *cache.TTL[struct{}]
	key      []byte
	accepted atomic.Int64

	now   func() time.Time
	newID func() string
}

// NewReceiver builds a Receiver.
func NewReceiver(cfg Config, cls *classifier.Classifier, repo store.Repository) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cls == nil || repo == nil {
		return nil, &models.ConfigurationError{Field: "ingest", Message: "classifier and store are required"}
	}
	key := []byte(cfg.SourceKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate source key: %w", err)
		}
	}
	r := &Receiver{
		cfg:   cfg,
		cls:   cls,
		repo:  repo,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}
	if cfg.DedupWindow > 0 {
		r.seen = cache.New[struct{}](cfg.DedupWindow)
	}
	return r, nil
}

// APIKey returns the shared key push clients must present, or "".
func (r *Receiver) APIKey() string {
	return r.cfg.APIKey
}

// AcceptProxyEvent ingests one proxy connection event.
func (r *Receiver) AcceptProxyEvent(ctx context.Context, tenantID string, ev ProxyEvent) (Receipt, error) {
	method, ok := proxyMethod(ev.Protocol)
	if !ok {
		metrics.IngestEvents.WithLabelValues(SourceProxy, "rejected").Inc()
		return Receipt{}, &models.ValidationError{Field: "protocol", Message: "must be CONNECT, HTTPS or HTTP"}
	}
	if strings.TrimSpace(ev.SourceIP) == "" {
		metrics.IngestEvents.WithLabelValues(SourceProxy, "rejected").Inc()
		return Receipt{}, &models.ValidationError{Field: "source_ip", Message: "required"}
	}
	raw := models.RawObservation{
		TenantID:   tenantID,
		SourceID:   r.pseudonym(tenantID, ev.SourceIP),
		Department: ev.Department,
		Host:       ev.DestinationHost,
		Method:     method,
		Timestamp:  ev.Timestamp,
	}
	return r.accept(ctx, SourceProxy, raw, false)
}

// AcceptExtensionEvent ingests one browser navigation.
func (r *Receiver) AcceptExtensionEvent(ctx context.Context, tenantID string, ev ExtensionEvent) (Receipt, error) {
	if strings.TrimSpace(ev.SourceID) == "" {
		metrics.IngestEvents.WithLabelValues(SourceExtension, "rejected").Inc()
		return Receipt{}, &models.ValidationError{Field: "source_id", Message: "required"}
	}
	raw := models.RawObservation{
		TenantID:   tenantID,
		SourceID:   ev.SourceID,
		Department: ev.Department,
		Host:       ev.ToolDomain,
		Method:     models.MethodBrowserNavigation,
		Timestamp:  ev.Timestamp,
	}
	return r.accept(ctx, SourceExtension, raw, true)
}

func (r *Receiver) accept(ctx context.Context, source string, raw models.RawObservation, dedup bool) (Receipt, error) {
	if err := r.checkTimestamp(raw.Timestamp); err != nil {
		metrics.IngestEvents.WithLabelValues(source, "rejected").Inc()
		return Receipt{}, err
	}
	m, ok, err := r.cls.Classify(raw)
	if err != nil {
		metrics.IngestEvents.WithLabelValues(source, "rejected").Inc()
		return Receipt{}, &models.ValidationError{Field: "event", Message: err.Error()}
	}

	rec := Receipt{EventID: r.newID()}
	if !ok {
		metrics.IngestEvents.WithLabelValues(source, "unmatched").Inc()
		return rec, nil
	}
	rec.Matched, rec.ToolID = true, m.Signature.ToolID

	seenKey := raw.TenantID + "\x00" + raw.SourceID + "\x00" + m.Observation.Host
	if dedup && r.seen != nil {
		if _, hit := r.seen.Get(seenKey); hit {
			rec.Duplicate = true
			metrics.IngestEvents.WithLabelValues(source, "duplicate").Inc()
			return rec, nil
		}
	}

	raw.Host = m.Observation.Host
	raw.Timestamp = m.Observation.Timestamp
	err = r.repo.Update(ctx, func(tx *store.Txn) error {
		return tx.PutPushedObservation(rec.EventID, raw, r.cfg.Retention)
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("buffer pushed observation: %w", err)
	}

	if dedup && r.seen != nil {
		r.seen.Set(seenKey, struct{}{})
		if r.accepted.Add(1)%pruneEvery == 0 {
			r.seen.Prune()
		}
	}
	metrics.IngestEvents.WithLabelValues(source, "buffered").Inc()
	logging.CtxDebug(ctx).
		Str("event_id", rec.EventID).
		Str("tenant_id", raw.TenantID).
		Str("source", source).
		Str("tool_id", rec.ToolID).
		Msg("Pushed observation buffered")
	return rec, nil
}

func (r *Receiver) checkTimestamp(at time.Time) error {
	if at.IsZero() {
		return &models.ValidationError{Field: "timestamp", Message: "required"}
	}
	now := r.now()
	if at.After(now.Add(r.cfg.MaxClockSkew)) {
		return &models.ValidationError{Field: "timestamp", Message: "in the future"}
	}
	if !at.After(now.Add(-r.cfg.Retention)) {
		return &models.ValidationError{Field: "timestamp", Message: "older than the ingest retention"}
	}
	return nil
}

// pseudonym maps a client address to a stable per-tenant source id.
func (r *Receiver) pseudonym(tenantID, ip string) string {
	mac := hmac.New(sha256.New, r.key)
	mac.Write([]byte(tenantID))
	mac.Write([]byte{0})
	mac.Write([]byte(strings.TrimSpace(ip)))
	return "ip-" + hex.EncodeToString(mac.Sum(nil)[:8])
}

// proxyMethod maps a proxy protocol to the signal it carries. Plain HTTP
// exposes only the requested name, the same signal as a lookup.
func proxyMethod(protocol string) (models.DetectionMethod, bool) {
	switch strings.ToUpper(strings.TrimSpace(protocol)) {
	case "CONNECT":
		return models.MethodConnectTunnel, true
	case "HTTPS":
		return models.MethodSNI, true
	case "HTTP":
		return models.MethodDNS, true
	}
	return "", false
}
