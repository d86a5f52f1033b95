// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shadowscan/internal/classifier"
	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/metrics"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/store"
)

// InputSourceSignature marks risk inputs taken from signature hints.
// Inputs from any other source (the governance evaluator) are not
// overwritten by scans.
const InputSourceSignature = "signature"

// maxCommitAttempts bounds retries of a group commit that lost an
// optimistic-concurrency race with an API transition.
const maxCommitAttempts = 3

// ErrWindowArchived is joined with the ConflictError returned for a window
// that has already been folded into a discovery's archived total.
var ErrWindowArchived = errors.New("window already archived")

// Batch is one page of metadata.
type Batch struct {
	Observations []models.RawObservation
	// NextCursor is empty on the last page.
	NextCursor string
}

// MetadataSource supplies raw observations for a tenant and window.
type MetadataSource interface {
	Fetch(ctx context.Context, tenantID string, w models.Window, cursor string, limit int) (Batch, error)
}

// Scanner runs scans. It is safe for concurrent use; at most one scan per
// tenant runs at a time.
type Scanner struct {
	cfg        Config
	classifier *classifier.Classifier
	assessor   *risk.Assessor
	repo       store.Repository
	source     MetadataSource
	now        func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
}

// NewScanner validates cfg and wires a Scanner.
func NewScanner(cfg Config, c *classifier.Classifier, a *risk.Assessor, repo store.Repository, src MetadataSource) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{
		cfg:        cfg,
		classifier: c,
		assessor:   a,
		repo:       repo,
		source:     src,
		now:        func() time.Time { return time.Now().UTC() },
		running:    make(map[string]struct{}),
	}, nil
}

// Config returns the scan settings.
func (s *Scanner) Config() Config {
	return s.cfg
}

func (s *Scanner) tryLock(tenantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[tenantID]; busy {
		return false
	}
	s.running[tenantID] = struct{}{}
	return true
}

func (s *Scanner) unlock(tenantID string) {
	s.mu.Lock()
	delete(s.running, tenantID)
	s.mu.Unlock()
}

// Run scans one window for a tenant and returns its ScanResult.
//
// A cancelled or failed fetch still commits what was aggregated so far and
// records a partial result; the result is returned together with the error.
// A ConflictError is returned without a result when another scan for the
// tenant is running or the window overlaps a different, earlier window.
func (s *Scanner) Run(ctx context.Context, tenantID string, w models.Window) (res models.ScanResult, err error) {
	defer func() { metrics.RecordScan(res, err) }()

	if tenantID == "" {
		return models.ScanResult{}, &models.ValidationError{Field: "tenant_id", Message: "required"}
	}
	if !w.Valid() {
		return models.ScanResult{}, &models.ValidationError{Field: "window", Message: "end must be after start"}
	}
	w = models.Window{Start: w.Start.UTC(), End: w.End.UTC()}

	if !s.tryLock(tenantID) {
		return models.ScanResult{}, &models.ConflictError{Entity: "scan", ID: tenantID, Reason: "scan already running"}
	}
	defer s.unlock(tenantID)

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	}

	rerun, err := s.checkWindow(ctx, tenantID, w)
	if err != nil {
		return models.ScanResult{}, err
	}

	started := s.now()
	res = models.ScanResult{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		CorrelationID: correlationID,
		WindowStart:   w.Start,
		WindowEnd:     w.End,
		StartedAt:     started,
	}

	agg := NewAggregator(s.cfg.Population)
	runErr := s.collect(ctx, tenantID, w, agg, &res)
	if runErr != nil {
		res.Partial = true
		res.Error = runErr.Error()
	}

	// The commit must land even when the caller's context is already done.
	commitCtx := context.WithoutCancel(ctx)
	touched := make(map[string]struct{}, agg.Len())
	for _, g := range agg.Groups() {
		id, created, gerr := s.commitGroup(commitCtx, g, w, correlationID)
		if gerr != nil {
			logging.CtxWarn(ctx).Err(gerr).
				Str("tenant_id", tenantID).
				Str("tool_id", g.Key.ToolID).
				Str("population", g.Key.Population).
				Msg("Discovery upsert failed, group skipped")
			res.SkippedCount += g.Count
			res.MatchedCount -= g.Count
			continue
		}
		touched[id] = struct{}{}
		if created {
			res.DiscoveriesCreated++
		} else {
			res.DiscoveriesUpdated++
		}
	}

	if rerun && !res.Partial {
		s.retractStale(commitCtx, tenantID, w, touched)
	}

	res.DurationMs = s.now().Sub(started).Milliseconds()
	if err := s.repo.Update(commitCtx, func(tx *store.Txn) error {
		if err := tx.PutScanWindow(tenantID, w); err != nil {
			return err
		}
		return tx.PutScanResult(&res)
	}); err != nil {
		return res, fmt.Errorf("record scan result: %w", err)
	}

	logEvent := logging.CtxInfo(ctx)
	if res.Partial {
		logEvent = logging.CtxWarn(ctx)
	}
	logEvent.
		Str("tenant_id", tenantID).
		Str("scan_id", res.ID).
		Int64("observations", res.ObservationCount).
		Int64("matched", res.MatchedCount).
		Int64("skipped", res.SkippedCount).
		Int("created", res.DiscoveriesCreated).
		Int("updated", res.DiscoveriesUpdated).
		Bool("partial", res.Partial).
		Int64("duration_ms", res.DurationMs).
		Msg("Scan finished")

	return res, runErr
}

// checkWindow rejects windows overlapping a different recorded window and
// reports whether w itself was scanned before.
func (s *Scanner) checkWindow(ctx context.Context, tenantID string, w models.Window) (bool, error) {
	rerun := false
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		windows, err := tx.ScanWindows(tenantID)
		if err != nil {
			return err
		}
		for _, prev := range windows {
			if prev.Equal(w) {
				rerun = true
				continue
			}
			if prev.Overlaps(w) {
				return &models.ConflictError{
					Entity: "scan",
					ID:     tenantID,
					Reason: fmt.Sprintf("window overlaps %s..%s", prev.Start.Format(time.RFC3339), prev.End.Format(time.RFC3339)),
				}
			}
		}
		return nil
	})
	return rerun, err
}

// collect pages through the source, classifying into agg. It returns the
// context error on cancellation or the fetch error; counts in res cover
// everything read before that.
func (s *Scanner) collect(ctx context.Context, tenantID string, w models.Window, agg *Aggregator, res *models.ScanResult) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := s.source.Fetch(ctx, tenantID, w, cursor, s.cfg.BatchSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("fetch metadata: %w", err)
		}
		res.Batches++

		for _, raw := range batch.Observations {
			res.ObservationCount++
			if raw.TenantID != tenantID || !w.Contains(raw.Timestamp) {
				res.SkippedCount++
				continue
			}
			m, ok, err := s.classifier.Classify(raw)
			switch {
			case err != nil:
				res.SkippedCount++
			case !ok:
				res.UnmatchedCount++
			default:
				res.MatchedCount++
				agg.Add(m)
			}
		}

		if batch.NextCursor == "" || batch.NextCursor == cursor {
			return nil
		}
		cursor = batch.NextCursor
	}
}

// commitGroup upserts one discovery in its own transaction, retrying when a
// concurrent transition wins the optimistic race.
func (s *Scanner) commitGroup(ctx context.Context, g *Group, w models.Window, correlationID string) (string, bool, error) {
	var (
		id      string
		created bool
		err     error
	)
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		id, created, err = s.upsert(ctx, g, w, correlationID)
		if err == nil || !errors.Is(err, models.ErrConflict) || errors.Is(err, ErrWindowArchived) {
			return id, created, err
		}
	}
	return id, created, err
}

func (s *Scanner) upsert(ctx context.Context, g *Group, w models.Window, correlationID string) (string, bool, error) {
	var (
		id      string
		created bool
	)
	err := s.repo.Update(ctx, func(tx *store.Txn) error {
		now := s.now()
		d, err := tx.DiscoveryByGroup(g.Key.TenantID, g.Key.ToolID, g.Key.Population)
		if err != nil {
			return err
		}
		created = d == nil
		if created {
			d = &models.Discovery{
				ID:         uuid.NewString(),
				TenantID:   g.Key.TenantID,
				ToolID:     g.Key.ToolID,
				Population: g.Key.Population,
				Status:     models.StatusDetected,
				CreatedAt:  now,
			}
		}
		d.ToolName = g.Signature.ToolName
		d.Provider = g.Signature.Provider
		d.Category = g.Signature.Category

		if err := s.cfg.Apply(d, g.Contribution(w)); err != nil {
			return fmt.Errorf("%w: %w", ErrWindowArchived, err)
		}
		refreshInputs(d, g.Signature, now)
		*d = s.assessor.Assess(*d, now)
		d.UpdatedAt = now
		id = d.ID

		if err := tx.PutDiscovery(d); err != nil {
			return err
		}
		if created {
			return tx.Emit(lifecycle.Discovered(*d, correlationID, now))
		}
		return nil
	})
	return id, created, err
}

// retractStale drops this window's contribution from discoveries the rerun
// no longer observed.
func (s *Scanner) retractStale(ctx context.Context, tenantID string, w models.Window, touched map[string]struct{}) {
	var stale []string
	err := s.repo.View(ctx, func(tx *store.Txn) error {
		list, err := tx.Discoveries(tenantID)
		if err != nil {
			return err
		}
		for i := range list {
			if _, ok := touched[list[i].ID]; ok {
				continue
			}
			for _, c := range list[i].Windows {
				if c.Start.Equal(w.Start) && c.End.Equal(w.End) {
					stale = append(stale, list[i].ID)
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("tenant_id", tenantID).Msg("Listing discoveries for rerun cleanup failed")
		return
	}

	for _, id := range stale {
		err := s.repo.Update(ctx, func(tx *store.Txn) error {
			d, err := tx.Discovery(tenantID, id)
			if err != nil {
				return err
			}
			if !s.cfg.Retract(d, w) {
				return nil
			}
			d.UpdatedAt = s.now()
			return tx.PutDiscovery(d)
		})
		if err != nil {
			logging.CtxWarn(ctx).Err(err).Str("tenant_id", tenantID).Str("discovery_id", id).Msg("Retracting window contribution failed")
		}
	}
}

// refreshInputs copies signature hints into d unless governance has set them.
// UpdatedAt only moves when a value changes.
func refreshInputs(d *models.Discovery, sig classifier.Signature, now time.Time) {
	if d.Inputs.Source != "" && d.Inputs.Source != InputSourceSignature {
		return
	}
	if d.Inputs.Source == InputSourceSignature &&
		d.Inputs.DataSensitivity == sig.DataSensitivity &&
		d.Inputs.ComplianceExposure == sig.ComplianceExposure {
		return
	}
	d.Inputs = models.RiskInputs{
		DataSensitivity:    sig.DataSensitivity,
		ComplianceExposure: sig.ComplianceExposure,
		Source:             InputSourceSignature,
		UpdatedAt:          now,
	}
}
