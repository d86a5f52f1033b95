// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Txn is a single Badger transaction with typed accessors.
type Txn struct {
	txn      *badger.Txn
	store    *Store
	writable bool

	// first entity written, used to describe a commit conflict
	firstEntity string
	firstID     string
}

func (t *Txn) mark(entity, id string) {
	if t.firstEntity == "" {
		t.firstEntity, t.firstID = entity, id
	}
}

// getJSON loads key into v. It reports false when the key does not exist.
func (t *Txn) getJSON(key []byte, v any) (bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (t *Txn) getString(key []byte) (string, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(val), true, nil
}

func (t *Txn) setJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := t.txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (t *Txn) delete(key []byte) error {
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// eachJSON decodes every value under prefix. newest iterates in reverse key
// order. fn returns false to stop.
func eachJSON[T any](t *Txn, prefix []byte, newest bool, fn func(key []byte, v *T) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix
	opts.Reverse = newest
	it := t.txn.NewIterator(opts)
	defer it.Close()

	seek := prefix
	if newest {
		seek = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var v T
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return fmt.Errorf("unmarshal %s: %w", item.Key(), err)
		}
		if !fn(item.KeyCopy(nil), &v) {
			return nil
		}
	}
	return nil
}

// Discovery loads one discovery or returns a *models.NotFoundError.
func (t *Txn) Discovery(tenantID, id string) (*models.Discovery, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var d models.Discovery
	ok, err := t.getJSON(discoveryKey(tenantID, id), &d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.NotFoundError{Entity: "discovery", ID: id}
	}
	return &d, nil
}

// DiscoveryByGroup finds the discovery for a grouping key, or nil.
func (t *Txn) DiscoveryByGroup(tenantID, toolID, population string) (*models.Discovery, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	id, ok, err := t.getString(groupingKey(tenantID, toolID, population))
	if err != nil || !ok {
		return nil, err
	}
	return t.Discovery(tenantID, id)
}

// PutDiscovery writes d, bumping its version.
func (t *Txn) PutDiscovery(d *models.Discovery) error {
	if err := checkTenant(d.TenantID); err != nil {
		return err
	}
	if d.ID == "" {
		return &models.ValidationError{Field: "id", Message: "required"}
	}
	t.mark("discovery", d.ID)
	d.Version++
	if err := t.setJSON(discoveryKey(d.TenantID, d.ID), d); err != nil {
		return err
	}
	return t.txn.Set(groupingKey(d.TenantID, d.ToolID, d.Population), []byte(d.ID))
}

// Discoveries returns every discovery of a tenant in key order.
func (t *Txn) Discoveries(tenantID string) ([]models.Discovery, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var out []models.Discovery
	err := eachJSON(t, discoveryPrefix(tenantID), false, func(_ []byte, d *models.Discovery) bool {
		out = append(out, *d)
		return true
	})
	return out, err
}

// Plan loads one plan or returns a *models.NotFoundError.
func (t *Txn) Plan(tenantID, id string) (*models.MigrationPlan, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var p models.MigrationPlan
	ok, err := t.getJSON(planKey(tenantID, id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.NotFoundError{Entity: "migration plan", ID: id}
	}
	return &p, nil
}

// ActivePlan returns the non-terminal plan of a discovery, or nil.
func (t *Txn) ActivePlan(tenantID, discoveryID string) (*models.MigrationPlan, error) {
	return t.planByIndex(tenantID, activePlanKey(tenantID, discoveryID))
}

// LatestPlan returns the most recently created plan of a discovery, or nil.
func (t *Txn) LatestPlan(tenantID, discoveryID string) (*models.MigrationPlan, error) {
	return t.planByIndex(tenantID, latestPlanKey(tenantID, discoveryID))
}

func (t *Txn) planByIndex(tenantID string, key []byte) (*models.MigrationPlan, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	id, ok, err := t.getString(key)
	if err != nil || !ok {
		return nil, err
	}
	return t.Plan(tenantID, id)
}

// PutPlan writes p and maintains the active, latest and expiry indexes.
func (t *Txn) PutPlan(p *models.MigrationPlan) error {
	if err := checkTenant(p.TenantID); err != nil {
		return err
	}
	if p.ID == "" || p.DiscoveryID == "" {
		return &models.ValidationError{Field: "id", Message: "plan and discovery ids required"}
	}
	t.mark("migration plan", p.ID)
	p.Version++
	if err := t.setJSON(planKey(p.TenantID, p.ID), p); err != nil {
		return err
	}
	if err := t.txn.Set(latestPlanKey(p.TenantID, p.DiscoveryID), []byte(p.ID)); err != nil {
		return err
	}

	aKey := activePlanKey(p.TenantID, p.DiscoveryID)
	if p.Active() {
		if err := t.txn.Set(aKey, []byte(p.ID)); err != nil {
			return err
		}
		return t.txn.Set(planExpiryKey(p), []byte(p.ID))
	}

	current, ok, err := t.getString(aKey)
	if err != nil {
		return err
	}
	if ok && current == p.ID {
		if err := t.delete(aKey); err != nil {
			return err
		}
	}
	return t.delete(planExpiryKey(p))
}

// Plans returns every plan of a tenant.
func (t *Txn) Plans(tenantID string) ([]models.MigrationPlan, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var out []models.MigrationPlan
	err := eachJSON(t, planPrefix(tenantID), false, func(_ []byte, p *models.MigrationPlan) bool {
		out = append(out, *p)
		return true
	})
	return out, err
}

// PlanRef identifies a plan across tenants.
type PlanRef struct {
	TenantID string
	PlanID   string
}

// ExpiredPlans lists active plans with ExpiresAt <= now, oldest first.
func (t *Txn) ExpiredPlans(now time.Time) ([]PlanRef, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	prefix := []byte(prefixPlanExpiry)
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	cutoff := ts(now)
	var refs []PlanRef
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		rest := strings.TrimPrefix(string(it.Item().Key()), prefixPlanExpiry)
		parts := strings.SplitN(rest, ":", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] > cutoff {
			break
		}
		refs = append(refs, PlanRef{TenantID: parts[1], PlanID: parts[2]})
	}
	return refs, nil
}

// ScanWindows returns every window recorded for a tenant, ordered by start.
func (t *Txn) ScanWindows(tenantID string) ([]models.Window, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var out []models.Window
	err := eachJSON(t, windowPrefix(tenantID), false, func(_ []byte, w *models.Window) bool {
		out = append(out, *w)
		return true
	})
	return out, err
}

// PutScanWindow records a window as scanned.
func (t *Txn) PutScanWindow(tenantID string, w models.Window) error {
	if err := checkTenant(tenantID); err != nil {
		return err
	}
	return t.setJSON(windowKey(tenantID, w.Start), w)
}

// PutScanResult stores an immutable scan result.
func (t *Txn) PutScanResult(r *models.ScanResult) error {
	if err := checkTenant(r.TenantID); err != nil {
		return err
	}
	if r.ID == "" {
		return &models.ValidationError{Field: "id", Message: "required"}
	}
	t.mark("scan", r.ID)
	return t.setJSON(scanKey(r), r)
}

// ScanResults returns up to limit results, newest first. limit <= 0 means all.
func (t *Txn) ScanResults(tenantID string, limit int) ([]models.ScanResult, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, err
	}
	var out []models.ScanResult
	err := eachJSON(t, scanPrefix(tenantID), true, func(_ []byte, r *models.ScanResult) bool {
		out = append(out, *r)
		return limit <= 0 || len(out) < limit
	})
	return out, err
}

// Emit queues events in the outbox as part of this transaction.
func (t *Txn) Emit(events ...models.Event) error {
	for i := range events {
		ev := events[i]
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("emit %s: %w", ev.EventType, err)
		}
		key := fmt.Sprintf("%s%020d:%020d", prefixOutboxPending, time.Now().UnixNano(), t.store.seq.Add(1))
		rec := outboxRecord{Event: ev, CreatedAt: time.Now().UTC()}
		if err := t.setJSON([]byte(key), &rec); err != nil {
			return err
		}
		outboxWritesTotal.Inc()
	}
	return nil
}
