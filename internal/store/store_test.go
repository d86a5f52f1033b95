// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDiscovery(id string) *models.Discovery {
	return &models.Discovery{
		ID:         id,
		TenantID:   "acme",
		ToolID:     "chatgpt",
		Population: "user-" + id,
		Status:     models.StatusDetected,
	}
}

func testEvent(discoveryID string) models.Event {
	return models.Event{
		EventID:       "ev-" + discoveryID,
		SchemaVersion: models.EventSchemaVersion,
		EventType:     models.EventDiscovered,
		TenantID:      "acme",
		CorrelationID: "corr",
		DiscoveryID:   discoveryID,
		NewState:      string(models.StatusDetected),
		Timestamp:     time.Now().UTC(),
	}
}

func TestDiscoveryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Txn) error {
		return tx.PutDiscovery(testDiscovery("d1"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = s.View(ctx, func(tx *Txn) error {
		d, err := tx.Discovery("acme", "d1")
		if err != nil {
			return err
		}
		if d.Version != 1 {
			t.Errorf("Version = %d, want 1", d.Version)
		}
		byGroup, err := tx.DiscoveryByGroup("acme", "chatgpt", "user-d1")
		if err != nil {
			return err
		}
		if byGroup == nil || byGroup.ID != "d1" {
			t.Errorf("DiscoveryByGroup = %+v, want d1", byGroup)
		}
		missing, err := tx.DiscoveryByGroup("acme", "claude", "user-d1")
		if err != nil || missing != nil {
			t.Errorf("DiscoveryByGroup(unknown) = (%v, %v), want (nil, nil)", missing, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestDiscoveryNotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.View(context.Background(), func(tx *Txn) error {
		_, err := tx.Discovery("acme", "nope")
		return err
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.Update(ctx, func(tx *Txn) error {
		a := testDiscovery("d1")
		b := testDiscovery("d2")
		b.TenantID = "acme2"
		if err := tx.PutDiscovery(a); err != nil {
			return err
		}
		return tx.PutDiscovery(b)
	})

	_ = s.View(ctx, func(tx *Txn) error {
		list, err := tx.Discoveries("acme")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].ID != "d1" {
			t.Errorf("Discoveries(acme) = %+v, want only d1", list)
		}
		if _, err := tx.Discovery("acme", "d2"); !errors.Is(err, models.ErrNotFound) {
			t.Error("tenant acme can see acme2's discovery")
		}
		return nil
	})
}

func TestDiscoveryByGroup_ColonInPartsDoesNotCollide(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testDiscovery("d1")
	first.ToolID, first.Population = "a", "b:c"
	second := testDiscovery("d2")
	second.ToolID, second.Population = "a:b", "c"

	err := s.Update(ctx, func(tx *Txn) error {
		if err := tx.PutDiscovery(first); err != nil {
			return err
		}
		return tx.PutDiscovery(second)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	tests := []struct {
		tool, population, wantID string
	}{
		{"a", "b:c", "d1"},
		{"a:b", "c", "d2"},
		{"a", "b", ""},
	}
	err = s.View(ctx, func(tx *Txn) error {
		for _, tt := range tests {
			got, err := tx.DiscoveryByGroup("acme", tt.tool, tt.population)
			if err != nil {
				return err
			}
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.wantID {
				t.Errorf("DiscoveryByGroup(%q, %q) = %q, want %q", tt.tool, tt.population, gotID, tt.wantID)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestInvalidTenant(t *testing.T) {
	s := openTestStore(t)

	err := s.Update(context.Background(), func(tx *Txn) error {
		d := testDiscovery("d1")
		d.TenantID = "a:b"
		return tx.PutDiscovery(d)
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx *Txn) error {
		if err := tx.PutDiscovery(testDiscovery("d1")); err != nil {
			return err
		}
		if err := tx.Emit(testEvent("d1")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	st, _ := s.Stats(ctx)
	if st.Pending != 0 {
		t.Errorf("pending events = %d, want 0 after rollback", st.Pending)
	}
	_ = s.View(ctx, func(tx *Txn) error {
		if _, err := tx.Discovery("acme", "d1"); !errors.Is(err, models.ErrNotFound) {
			t.Error("discovery persisted despite rollback")
		}
		return nil
	})
}

func TestConcurrentWritesConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.Update(ctx, func(tx *Txn) error { return tx.PutDiscovery(testDiscovery("d1")) })

	// Both transactions read the discovery before either commits.
	var ready, release sync.WaitGroup
	ready.Add(2)
	release.Add(1)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Update(ctx, func(tx *Txn) error {
				d, err := tx.Discovery("acme", "d1")
				if err != nil {
					return err
				}
				ready.Done()
				release.Wait()
				d.StatusNote = fmt.Sprintf("writer %d", i)
				return tx.PutDiscovery(d)
			})
		}(i)
	}
	ready.Wait()
	release.Done()
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if errors.Is(err, models.ErrConflict) {
			conflicts++
			var ce *models.ConflictError
			if errors.As(err, &ce) && (ce.Entity != "discovery" || ce.ID != "d1") {
				t.Errorf("conflict = %+v, want discovery d1", ce)
			}
		} else if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if conflicts != 1 {
		t.Errorf("conflicts = %d, want exactly 1", conflicts)
	}
}

func TestPlanIndexes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p := &models.MigrationPlan{
		ID: "p1", DiscoveryID: "d1", TenantID: "acme",
		Status: models.PlanApprovalPending, CreatedAt: t0, ExpiresAt: t0.Add(90 * 24 * time.Hour),
	}
	if err := s.Update(ctx, func(tx *Txn) error { return tx.PutPlan(p) }); err != nil {
		t.Fatal(err)
	}

	_ = s.View(ctx, func(tx *Txn) error {
		active, err := tx.ActivePlan("acme", "d1")
		if err != nil || active == nil || active.ID != "p1" {
			t.Errorf("ActivePlan = (%v, %v), want p1", active, err)
		}
		refs, _ := tx.ExpiredPlans(t0.Add(89 * 24 * time.Hour))
		if len(refs) != 0 {
			t.Errorf("ExpiredPlans before expiry = %v", refs)
		}
		refs, _ = tx.ExpiredPlans(t0.Add(91 * 24 * time.Hour))
		if len(refs) != 1 || refs[0] != (PlanRef{TenantID: "acme", PlanID: "p1"}) {
			t.Errorf("ExpiredPlans after expiry = %v", refs)
		}
		return nil
	})

	p.Status = models.PlanExpired
	if err := s.Update(ctx, func(tx *Txn) error { return tx.PutPlan(p) }); err != nil {
		t.Fatal(err)
	}

	_ = s.View(ctx, func(tx *Txn) error {
		active, err := tx.ActivePlan("acme", "d1")
		if err != nil || active != nil {
			t.Errorf("ActivePlan after expiry = (%v, %v), want nil", active, err)
		}
		latest, err := tx.LatestPlan("acme", "d1")
		if err != nil || latest == nil || latest.Status != models.PlanExpired {
			t.Errorf("LatestPlan = (%v, %v), want expired p1", latest, err)
		}
		refs, _ := tx.ExpiredPlans(t0.Add(365 * 24 * time.Hour))
		if len(refs) != 0 {
			t.Errorf("terminal plan still indexed for expiry: %v", refs)
		}
		return nil
	})
}

func TestScanResultsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = s.Update(ctx, func(tx *Txn) error {
		for i := 0; i < 5; i++ {
			r := &models.ScanResult{ID: fmt.Sprintf("s%d", i), TenantID: "acme", StartedAt: t0.Add(time.Duration(i) * time.Hour)}
			if err := tx.PutScanResult(r); err != nil {
				return err
			}
		}
		return nil
	})

	_ = s.View(ctx, func(tx *Txn) error {
		got, err := tx.ScanResults("acme", 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 || got[0].ID != "s4" || got[2].ID != "s2" {
			t.Errorf("ScanResults = %+v, want s4,s3,s2", got)
		}
		return nil
	})
}

func TestScanWindows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = s.Update(ctx, func(tx *Txn) error {
		_ = tx.PutScanWindow("acme", models.Window{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour)})
		return tx.PutScanWindow("acme", models.Window{Start: t0, End: t0.Add(time.Hour)})
	})
	_ = s.View(ctx, func(tx *Txn) error {
		ws, _ := tx.ScanWindows("acme")
		if len(ws) != 2 || !ws[0].Start.Equal(t0) {
			t.Errorf("ScanWindows = %+v, want ordered by start", ws)
		}
		return nil
	})
}

func TestClosedStore(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	if err := s.View(context.Background(), func(*Txn) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("View after Close = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty path should be rejected")
	}
	cfg.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("in-memory config without path rejected: %v", err)
	}
}
