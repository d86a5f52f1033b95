// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSeverity_RankAndMax(t *testing.T) {
	if SeverityCritical.Rank() <= SeverityHigh.Rank() {
		t.Error("critical must outrank high")
	}
	if Severity("bogus").Valid() {
		t.Error("unknown severity should not be valid")
	}
	if got := MaxSeverity(SeverityMedium, SeverityHigh); got != SeverityHigh {
		t.Errorf("MaxSeverity = %s, want high", got)
	}
	if got := MaxSeverity(SeverityCritical, ""); got != SeverityCritical {
		t.Errorf("MaxSeverity with empty = %s, want critical", got)
	}
}

func TestPlanStatus_Terminal(t *testing.T) {
	tests := []struct {
		status    PlanStatus
		terminal  bool
		expirable bool
	}{
		{PlanProposed, false, true},
		{PlanApprovalPending, false, true},
		{PlanApproved, false, true},
		{PlanInProgress, false, true},
		{PlanCompleted, true, false},
		{PlanRejected, true, false},
		{PlanExpired, true, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
		if got := tt.status.Expirable(); got != tt.expirable {
			t.Errorf("%s.Expirable() = %v, want %v", tt.status, got, tt.expirable)
		}
	}
}

func TestMigrationPlan_PastExpiry(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &MigrationPlan{Status: PlanApprovalPending, ExpiresAt: t0.Add(90 * 24 * time.Hour)}

	if p.PastExpiry(t0.Add(89 * 24 * time.Hour)) {
		t.Error("plan should not be past expiry before expires_at")
	}
	if !p.PastExpiry(p.ExpiresAt) {
		t.Error("expires_at == now must count as past expiry")
	}
	p.Status = PlanCompleted
	if p.PastExpiry(t0.Add(91 * 24 * time.Hour)) {
		t.Error("completed plan is never expirable")
	}
}

func TestDiscovery_Recount(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := &Discovery{
		Archived: WindowContribution{Count: 5, Methods: []DetectionMethod{MethodDNS}, FirstSeen: t0},
		Windows: []WindowContribution{
			{Count: 2, Methods: []DetectionMethod{MethodSNI}, LastSeen: t0.Add(time.Hour)},
			{Count: 3, Methods: []DetectionMethod{MethodDNS, MethodAuthHeaderPattern}, CredentialIndicator: true, LastSeen: t0.Add(2 * time.Hour)},
		},
	}
	d.Recount()

	if d.Frequency != 10 {
		t.Errorf("Frequency = %d, want 10", d.Frequency)
	}
	if len(d.Methods) != 3 {
		t.Errorf("Methods = %v, want 3 distinct", d.Methods)
	}
	if !d.CredentialIndicator {
		t.Error("CredentialIndicator should be true")
	}
	if !d.FirstSeen.Equal(t0) {
		t.Errorf("FirstSeen = %v, want %v", d.FirstSeen, t0)
	}
	if !d.LastSeen.Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("LastSeen = %v, want %v", d.LastSeen, t0.Add(2*time.Hour))
	}
}

func TestDiscovery_ScoreFresh(t *testing.T) {
	now := time.Now()
	d := &Discovery{Inputs: RiskInputs{UpdatedAt: now}}
	if d.ScoreFresh() {
		t.Error("unscored discovery must not be fresh")
	}
	d.ScoredAt = now
	if !d.ScoreFresh() {
		t.Error("score computed at input time should be fresh")
	}
	d.Inputs.UpdatedAt = now.Add(time.Second)
	if d.ScoreFresh() {
		t.Error("inputs updated after scoring must invalidate the score")
	}
}

func TestWindow_Overlaps(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Window{Start: t0, End: t0.Add(time.Hour)}
	b := Window{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour)}
	c := Window{Start: t0.Add(30 * time.Minute), End: t0.Add(90 * time.Minute)}

	if a.Overlaps(b) {
		t.Error("adjacent windows must not overlap")
	}
	if !a.Overlaps(c) || !c.Overlaps(b) {
		t.Error("straddling window should overlap both")
	}
	if !a.Contains(t0) || a.Contains(t0.Add(time.Hour)) {
		t.Error("window is half-open [start, end)")
	}
}

func TestErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&ConfigurationError{Field: "risk.weights", Message: "must sum to 1.0"}, ErrConfiguration},
		{&ConflictError{Entity: "discovery", ID: "d1", Reason: "busy"}, ErrConflict},
		{&NotFoundError{Entity: "plan", ID: "p1"}, ErrNotFound},
		{&UpstreamUnavailableError{Service: "catalog", Attempts: 3, Err: errors.New("timeout")}, ErrUpstreamUnavailable},
		{&ExpiryRaceError{PlanID: "p1", Current: PlanExpired, Attempted: PlanApproved}, ErrExpiryRace},
		{&TransitionError{Entity: "discovery", ID: "d1", From: "detected", To: "migrated"}, ErrInvalidTransition},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("outer: %w", tt.err)
		if !errors.Is(wrapped, tt.sentinel) {
			t.Errorf("errors.Is(%T, %v) = false, want true", tt.err, tt.sentinel)
		}
		if errors.Is(wrapped, ErrNotFound) && tt.sentinel != ErrNotFound {
			t.Errorf("%T should not match ErrNotFound", tt.err)
		}
	}
}

func TestUpstreamUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UpstreamUnavailableError{Service: "governance", Attempts: 2, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("should unwrap to the cause")
	}
	if !err.Retryable() {
		t.Error("upstream errors are retryable")
	}
}

func TestEvent_ValidateAndTopic(t *testing.T) {
	e := &Event{
		EventID:     "e1",
		EventType:   EventDiscovered,
		TenantID:    "acme",
		DiscoveryID: "d1",
		NewState:    string(StatusDetected),
		Timestamp:   time.Now(),
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if got, want := e.Topic(), "shadowai.acme.shadow_ai.discovered"; got != want {
		t.Errorf("Topic() = %q, want %q", got, want)
	}
	if got := e.DedupKey(); got != "d1:>detected" {
		t.Errorf("DedupKey() = %q", got)
	}

	e.DiscoveryID = ""
	var ve *ValidationError
	if err := e.Validate(); !errors.As(err, &ve) || ve.Field != "discovery_id" {
		t.Errorf("Validate() without subject = %v, want discovery_id error", err)
	}
}

func TestRawObservation_AuthHeaderNeverEncoded(t *testing.T) {
	raw := RawObservation{TenantID: "acme", Host: "api.openai.com", Method: MethodDNS, AuthHeader: "Bearer sk-live-abcdef"}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "sk-live") {
		t.Errorf("encoded RawObservation leaked header value: %s", data)
	}
}
