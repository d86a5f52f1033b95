// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package ingest

import (
	"context"
	"strings"

	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Cursor phases. Upstream cursors are carried verbatim behind their prefix.
const (
	upstreamCursor = "u:"
	pushedCursor   = "p:"
)

// Source reads the upstream collector first and then the pushed buffer for
// the same tenant and window. It implements scan.MetadataSource.
type Source struct {
	next scan.MetadataSource
	repo store.Repository
}

var _ scan.MetadataSource = (*Source)(nil)

// NewSource combines next with the pushed buffer in repo. A nil next reads
// only the buffer.
func NewSource(next scan.MetadataSource, repo store.Repository) *Source {
	return &Source{next: next, repo: repo}
}

// Fetch returns one page from whichever phase cursor is in.
func (s *Source) Fetch(ctx context.Context, tenantID string, w models.Window, cursor string, limit int) (scan.Batch, error) {
	if !strings.HasPrefix(cursor, pushedCursor) && s.next != nil {
		b, err := s.next.Fetch(ctx, tenantID, w, strings.TrimPrefix(cursor, upstreamCursor), limit)
		if err != nil {
			return scan.Batch{}, err
		}
		if b.NextCursor == "" {
			b.NextCursor = pushedCursor
		} else {
			b.NextCursor = upstreamCursor + b.NextCursor
		}
		return b, nil
	}

	var (
		out  []models.RawObservation
		next string
	)
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		var err error
		out, next, err = tx.PushedObservations(tenantID, w, strings.TrimPrefix(cursor, pushedCursor), limit)
		return err
	})
	if err != nil {
		return scan.Batch{}, err
	}
	if next != "" {
		next = pushedCursor + next
	}
	return scan.Batch{Observations: out, NextCursor: next}, nil
}
