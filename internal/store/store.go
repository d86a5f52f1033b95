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
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("store is closed")

// Repository is the transactional surface the domain packages depend on.
type Repository interface {
	Update(ctx context.Context, fn func(*Txn) error) error
	View(ctx context.Context, fn func(*Txn) error) error
}

// Store is the BadgerDB-backed Repository.
type Store struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool

	// seq orders outbox entries written within the same nanosecond.
	seq atomic.Uint64
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites && !cfg.InMemory
	if cfg.MemTableSize > 0 {
		opts.MemTableSize = cfg.MemTableSize
	}
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("Store opened")

	return &Store{db: db, config: cfg}, nil
}

// OpenInMemory opens a throwaway in-memory store.
func OpenInMemory() (*Store, error) {
	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.Path = ""
	cfg.GCInterval = 0
	return Open(cfg)
}

func (s *Store) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Update runs fn in a read-write transaction. Either everything fn wrote,
// events included, is committed or nothing is.
func (s *Store) Update(ctx context.Context, fn func(*Txn) error) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	start := time.Now()
	var tx *Txn
	err := s.db.Update(func(btx *badger.Txn) error {
		tx = &Txn{txn: btx, store: s, writable: true}
		return fn(tx)
	})
	RecordTxn("update", time.Since(start), err)
	if errors.Is(err, badger.ErrConflict) {
		entity, id := "record", ""
		if tx != nil && tx.firstEntity != "" {
			entity, id = tx.firstEntity, tx.firstID
		}
		return &models.ConflictError{Entity: entity, ID: id, Reason: "concurrent modification"}
	}
	return err
}

// View runs fn in a read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(*Txn) error) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	start := time.Now()
	err := s.db.View(func(btx *badger.Txn) error {
		return fn(&Txn{txn: btx, store: s})
	})
	RecordTxn("view", time.Since(start), err)
	return err
}

// RunGC runs value log GC until there is nothing left to rewrite.
func (s *Store) RunGC() error {
	if err := s.checkOpen(context.Background()); err != nil {
		return err
	}
	if s.config.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close shuts the database down, giving up after CloseTimeout.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Store closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

// GCInterval returns the configured GC period.
func (s *Store) GCInterval() time.Duration {
	return s.config.GCInterval
}
