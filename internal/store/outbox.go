// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/models"
)

// ErrEntryNotFound is returned when an outbox entry no longer exists.
var ErrEntryNotFound = errors.New("outbox entry not found")

type outboxRecord struct {
	Event     models.Event `json:"event"`
	Attempts  int          `json:"attempts"`
	LastError string       `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// OutboxEntry is an unpublished event.
type OutboxEntry struct {
	Key       string
	Event     models.Event
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// OutboxStats counts outbox entries.
type OutboxStats struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
}

// PendingEvents returns up to limit unpublished events in commit order.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]OutboxEntry, error) {
	var out []OutboxEntry
	err := s.View(ctx, func(tx *Txn) error {
		return eachJSON(tx, []byte(prefixOutboxPending), false, func(key []byte, rec *outboxRecord) bool {
			out = append(out, OutboxEntry{
				Key:       string(key),
				Event:     rec.Event,
				Attempts:  rec.Attempts,
				LastError: rec.LastError,
				CreatedAt: rec.CreatedAt,
			})
			if ctx.Err() != nil {
				return false
			}
			return limit <= 0 || len(out) < limit
		})
	})
	return out, err
}

// Ack removes a published entry and leaves a sent marker for SentTTL.
func (s *Store) Ack(ctx context.Context, e OutboxEntry) error {
	err := s.Update(ctx, func(tx *Txn) error {
		key := []byte(e.Key)
		if _, err := tx.txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		} else if err != nil {
			return fmt.Errorf("get pending entry: %w", err)
		}
		if err := tx.delete(key); err != nil {
			return err
		}
		if s.config.SentTTL <= 0 {
			return nil
		}
		marker := badger.NewEntry([]byte(prefixOutboxSent+e.Event.EventID), []byte(e.Event.EventType)).
			WithTTL(s.config.SentTTL)
		return tx.txn.SetEntry(marker)
	})
	if err == nil {
		outboxAcksTotal.Inc()
	}
	return err
}

// Nack records a failed publish attempt.
func (s *Store) Nack(ctx context.Context, e OutboxEntry, cause error) error {
	return s.Update(ctx, func(tx *Txn) error {
		var rec outboxRecord
		ok, err := tx.getJSON([]byte(e.Key), &rec)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEntryNotFound
		}
		rec.Attempts++
		if cause != nil {
			rec.LastError = cause.Error()
		}
		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return tx.txn.Set([]byte(e.Key), data)
	})
}

// Sent reports whether an event id was published within SentTTL.
func (s *Store) Sent(ctx context.Context, eventID string) (bool, error) {
	found := false
	err := s.View(ctx, func(tx *Txn) error {
		_, err := tx.txn.Get([]byte(prefixOutboxSent + eventID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Stats counts pending and sent entries.
func (s *Store) Stats(ctx context.Context) (OutboxStats, error) {
	var st OutboxStats
	err := s.View(ctx, func(tx *Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := tx.txn.NewIterator(opts)
		defer it.Close()

		pending := []byte(prefixOutboxPending)
		for it.Seek(pending); it.ValidForPrefix(pending); it.Next() {
			st.Pending++
		}
		sent := []byte(prefixOutboxSent)
		for it.Seek(sent); it.ValidForPrefix(sent); it.Next() {
			st.Sent++
		}
		return nil
	})
	if err == nil {
		outboxPending.Set(float64(st.Pending))
	}
	return st, err
}
