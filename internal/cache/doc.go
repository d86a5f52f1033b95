// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package cache provides a small generic in-memory cache with TTL expiry.

It fronts slow, rarely changing collaborator lookups. The alternatives
catalog is the main user: the same (tenant, tool, category) triple is
looked up for every migration proposal of a popular tool.

# Usage

	c := cache.New[[]models.Alternative](5 * time.Minute)
	c.Set(key, alts)
	if alts, ok := c.Get(key); ok {
	    // fresh hit
	}

Entries expire lazily on Get. Callers that hold a cache for a long time
can call Prune periodically to release memory for keys that are never read
again.

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
