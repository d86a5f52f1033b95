// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package migration

import (
	"strings"

	"github.com/tomtom215/shadowscan/internal/models"
)

// SelectAlternative picks the migration target for a shadow tool's category.
// An exact category match wins; otherwise the candidate sharing the longest
// dotted category prefix is chosen. Ties go to the lower rank, then the
// lower id.
func SelectAlternative(category string, candidates []models.Alternative) (models.Alternative, bool) {
	if len(candidates) == 0 {
		return models.Alternative{}, false
	}

	best := candidates[0]
	bestScore := affinity(category, best.Category)
	for _, c := range candidates[1:] {
		score := affinity(category, c.Category)
		switch {
		case score > bestScore:
		case score == bestScore && c.Rank < best.Rank:
		case score == bestScore && c.Rank == best.Rank && c.ID < best.ID:
		default:
			continue
		}
		best, bestScore = c, score
	}
	return best, true
}

// affinity scores a candidate category: exact matches beat any prefix match,
// longer shared prefixes beat shorter ones.
func affinity(want, have string) int {
	if want == have {
		return 1 << 16
	}
	a := strings.Split(want, ".")
	b := strings.Split(have, ".")
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
