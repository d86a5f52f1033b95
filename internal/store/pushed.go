// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/models"
)

// PutPushedObservation buffers an observation delivered by a push source
// until a scan covering its timestamp reads it. The auth header is never
// encoded. A positive ttl lets Badger expire the entry on its own.
func (t *Txn) PutPushedObservation(id string, o models.RawObservation, ttl time.Duration) error {
	if err := checkTenant(o.TenantID); err != nil {
		return err
	}
	if id == "" || strings.Contains(id, ":") {
		return &models.ValidationError{Field: "id", Message: "required and must not contain ':'"}
	}
	if o.Timestamp.IsZero() {
		return &models.ValidationError{Field: "timestamp", Message: "required"}
	}
	o.AuthHeader = ""
	key := pushedKey(o.TenantID, o.Timestamp, id)
	data, err := json.Marshal(&o)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	e := badger.NewEntry(key, data)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := t.txn.SetEntry(e); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// PushedObservations reads up to limit buffered observations of a tenant
// whose timestamps fall in w, in timestamp order, starting after cursor.
// The returned cursor is empty once the window is exhausted.
func (t *Txn) PushedObservations(tenantID string, w models.Window, cursor string, limit int) ([]models.RawObservation, string, error) {
	if err := checkTenant(tenantID); err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		return nil, "", &models.ValidationError{Field: "limit", Message: "must be > 0"}
	}

	prefix := pushedPrefix(tenantID)
	seek := append(append([]byte{}, prefix...), ts(w.Start)...)
	if cursor != "" {
		// Resume strictly after the last key handed out.
		after := append(append([]byte{}, prefix...), cursor...)
		after = append(after, 0x00)
		if bytes.Compare(after, seek) > 0 {
			seek = after
		}
	}
	end := append(append([]byte{}, prefix...), ts(w.End)...)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	var (
		out  []models.RawObservation
		last []byte
	)
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		if bytes.Compare(item.Key(), end) >= 0 {
			break
		}
		var o models.RawObservation
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &o) }); err != nil {
			return nil, "", fmt.Errorf("unmarshal %s: %w", item.Key(), err)
		}
		out = append(out, o)
		last = item.KeyCopy(nil)
		if len(out) == limit {
			return out, string(last[len(prefix):]), nil
		}
	}
	return out, "", nil
}
