// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package lifecycle

import (
	"sync"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Locks is an in-process keyed try-lock giving each entity a single writer.
// It never blocks: a held key is reported as a ConflictError. Cross-process
// writers are still caught by the store's optimistic transactions.
type Locks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocks returns an empty lock table.
func NewLocks() *Locks {
	return &Locks{held: make(map[string]struct{})}
}

// TryLock claims (entity, tenant, id). The returned release func must be
// called exactly once.
func (l *Locks) TryLock(entity, tenantID, id string) (func(), error) {
	key := entity + "/" + tenantID + "/" + id

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, &models.ConflictError{Entity: entity, ID: id, Reason: "another operation is in progress"}
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// Held reports whether a key is currently claimed.
func (l *Locks) Held(entity, tenantID, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[entity+"/"+tenantID+"/"+id]
	return ok
}
