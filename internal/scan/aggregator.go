// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package scan

import (
	"sort"
	"time"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/models"
)

// Population labels used when an observation lacks the attribute the
// configured granularity groups on.
const (
	UnattributedSource = "unattributed"
	UnassignedDept     = "unassigned"
)

// GroupKey identifies one Discovery.
type GroupKey struct {
	TenantID   string
	ToolID     string
	Population string
}

// Group is the aggregate of one key's matches within a window.
type Group struct {
	Key        GroupKey
	Signature  classifier.Signature
	Count      int64
	Methods    map[models.DetectionMethod]struct{}
	Credential bool
	FirstSeen  time.Time
	LastSeen   time.Time
}

// Contribution converts the group into a ledger entry for w.
func (g *Group) Contribution(w models.Window) models.WindowContribution {
	return models.WindowContribution{
		Start:               w.Start.UTC(),
		End:                 w.End.UTC(),
		Count:               g.Count,
		Methods:             models.SortedMethods(g.Methods),
		CredentialIndicator: g.Credential,
		FirstSeen:           g.FirstSeen,
		LastSeen:            g.LastSeen,
	}
}

// Population returns the grouping label of o at the given granularity.
func Population(granularity string, o models.Observation) string {
	switch granularity {
	case models.PopulationEnterprise:
		return models.EnterpriseWide
	case models.PopulationDepartment:
		if o.Department == "" {
			return UnassignedDept
		}
		return o.Department
	default:
		if o.SourceID == "" {
			return UnattributedSource
		}
		return o.SourceID
	}
}

// Aggregator groups classified observations. It is not safe for concurrent
// use; each scan owns one.
type Aggregator struct {
	granularity string
	groups      map[GroupKey]*Group
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(granularity string) *Aggregator {
	return &Aggregator{granularity: granularity, groups: make(map[GroupKey]*Group)}
}

// Add folds one match into its group.
func (a *Aggregator) Add(m classifier.Match) {
	o := m.Observation
	key := GroupKey{TenantID: o.TenantID, ToolID: m.Signature.ToolID, Population: Population(a.granularity, o)}

	g, ok := a.groups[key]
	if !ok {
		g = &Group{
			Key:       key,
			Signature: m.Signature,
			Methods:   make(map[models.DetectionMethod]struct{}),
			FirstSeen: o.Timestamp,
			LastSeen:  o.Timestamp,
		}
		a.groups[key] = g
	}
	g.Count++
	g.Methods[o.Method] = struct{}{}
	g.Credential = g.Credential || o.CredentialIndicator
	if o.Timestamp.Before(g.FirstSeen) {
		g.FirstSeen = o.Timestamp
	}
	if o.Timestamp.After(g.LastSeen) {
		g.LastSeen = o.Timestamp
	}
}

// Len returns the number of groups.
func (a *Aggregator) Len() int {
	return len(a.groups)
}

// Groups returns the groups ordered by key.
func (a *Aggregator) Groups() []*Group {
	out := make([]*Group, 0, len(a.groups))
	for _, g := range a.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		x, y := out[i].Key, out[j].Key
		if x.TenantID != y.TenantID {
			return x.TenantID < y.TenantID
		}
		if x.ToolID != y.ToolID {
			return x.ToolID < y.ToolID
		}
		return x.Population < y.Population
	})
	return out
}

// Aggregate groups a complete set of matches in one call.
func Aggregate(granularity string, matches []classifier.Match) []*Group {
	a := NewAggregator(granularity)
	for _, m := range matches {
		a.Add(m)
	}
	return a.Groups()
}

// Apply records c in d's window ledger, replacing any earlier contribution
// for the same window, and recomputes frequency, methods and volume.
// Contributions beyond MaxWindows are folded into the archived total; a
// window that ends at or before the archived horizon can no longer be
// replaced and is rejected with a ConflictError.
func (cfg Config) Apply(d *models.Discovery, c models.WindowContribution) error {
	if !d.Archived.End.IsZero() && !c.End.After(d.Archived.End) {
		return &models.ConflictError{Entity: "discovery", ID: d.ID, Reason: "window already archived"}
	}

	replaced := false
	for i := range d.Windows {
		if d.Windows[i].Start.Equal(c.Start) && d.Windows[i].End.Equal(c.End) {
			d.Windows[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		d.Windows = append(d.Windows, c)
	}
	sort.Slice(d.Windows, func(i, j int) bool { return d.Windows[i].Start.Before(d.Windows[j].Start) })

	for len(d.Windows) > cfg.MaxWindows {
		archive(&d.Archived, d.Windows[0])
		d.Windows = d.Windows[1:]
	}

	cfg.recount(d)
	return nil
}

// Retract removes the contribution for w, if any, and reports whether the
// ledger changed.
func (cfg Config) Retract(d *models.Discovery, w models.Window) bool {
	for i := range d.Windows {
		if d.Windows[i].Start.Equal(w.Start) && d.Windows[i].End.Equal(w.End) {
			d.Windows = append(d.Windows[:i], d.Windows[i+1:]...)
			cfg.recount(d)
			return true
		}
	}
	return false
}

func (cfg Config) recount(d *models.Discovery) {
	d.Recount()
	d.VolumeBucket = cfg.Volume(d.Frequency, len(d.Methods))
}

func archive(dst *models.WindowContribution, w models.WindowContribution) {
	if dst.Start.IsZero() || w.Start.Before(dst.Start) {
		dst.Start = w.Start
	}
	if w.End.After(dst.End) {
		dst.End = w.End
	}
	dst.Count += w.Count

	set := make(map[models.DetectionMethod]struct{}, len(dst.Methods)+len(w.Methods))
	for _, m := range dst.Methods {
		set[m] = struct{}{}
	}
	for _, m := range w.Methods {
		set[m] = struct{}{}
	}
	dst.Methods = models.SortedMethods(set)

	dst.CredentialIndicator = dst.CredentialIndicator || w.CredentialIndicator
	if !w.FirstSeen.IsZero() && (dst.FirstSeen.IsZero() || w.FirstSeen.Before(dst.FirstSeen)) {
		dst.FirstSeen = w.FirstSeen
	}
	if w.LastSeen.After(dst.LastSeen) {
		dst.LastSeen = w.LastSeen
	}
}
