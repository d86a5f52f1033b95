// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"context"
	"slices"
	"time"

	"github.com/tomtom215/shadowscan/internal/cache"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/models"
)

// CachedCatalog memoizes successful Alternatives lookups. Errors are never
// cached, so an outage does not pin an empty candidate list.
type CachedCatalog struct {
	next  migration.Catalog
	cache *cache.TTL[[]models.Alternative]
}

var _ migration.Catalog = (*CachedCatalog)(nil)

// NewCachedCatalog wraps next with a TTL cache.
func NewCachedCatalog(next migration.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache.New[[]models.Alternative](ttl)}
}

// Alternatives implements migration.Catalog.
func (c *CachedCatalog) Alternatives(ctx context.Context, tenantID, toolID, category string) ([]models.Alternative, error) {
	key := tenantID + "\x00" + toolID + "\x00" + category
	if alts, ok := c.cache.Get(key); ok {
		metrics.UpstreamCacheLookups.WithLabelValues("catalog", "hit").Inc()
		return slices.Clone(alts), nil
	}
	metrics.UpstreamCacheLookups.WithLabelValues("catalog", "miss").Inc()

	alts, err := c.next.Alternatives(ctx, tenantID, toolID, category)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, slices.Clone(alts))
	return alts, nil
}
