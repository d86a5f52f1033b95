// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package lifecycle

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/shadowscan/internal/models"
)

func TestLocks_SingleWriter(t *testing.T) {
	l := NewLocks()

	release, err := l.TryLock("discovery", "acme", "d1")
	if err != nil {
		t.Fatalf("first TryLock: %v", err)
	}
	if _, err := l.TryLock("discovery", "acme", "d1"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("second TryLock = %v, want ConflictError", err)
	}

	// Other keys are independent.
	if r, err := l.TryLock("discovery", "acme", "d2"); err != nil {
		t.Errorf("TryLock(d2) = %v", err)
	} else {
		r()
	}
	if r, err := l.TryLock("discovery", "acme2", "d1"); err != nil {
		t.Errorf("TryLock(other tenant) = %v", err)
	} else {
		r()
	}

	release()
	release()
	if l.Held("discovery", "acme", "d1") {
		t.Error("key still held after release")
	}
}

func TestLocks_Concurrent(t *testing.T) {
	l := NewLocks()
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := l.TryLock("plan", "acme", "p1"); err == nil {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("winners = %d, want 1", got)
	}
}
