// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package core

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/shadowscan/internal/lifecycle"
	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/risk"
	"github.com/tomtom215/shadowscan/internal/scan"
	"github.com/tomtom215/shadowscan/internal/store"
)

// Evaluator is the governance policy evaluator.
type Evaluator interface {
	Evaluate(ctx context.Context, req models.EvaluationRequest) (models.Evaluation, error)
}

// Deps wires a Service. Evaluator and OnCommit are optional.
type Deps struct {
	Repo      store.Repository
	Scanner   *scan.Scanner
	Workflow  *migration.Workflow
	Assessor  *risk.Assessor
	Evaluator Evaluator
	Locks     *lifecycle.Locks

	// OnCommit is called after any commit that emitted events, typically to
	// wake the outbox relay.
	OnCommit func()
}

// Service implements the exposed operations.
type Service struct {
	repo      store.Repository
	scanner   *scan.Scanner
	workflow  *migration.Workflow
	assessor  *risk.Assessor
	evaluator Evaluator
	locks     *lifecycle.Locks
	onCommit  func()
	now       func() time.Time
}

// New checks the required dependencies and returns a Service.
func New(d Deps) (*Service, error) {
	switch {
	case d.Repo == nil:
		return nil, errors.New("core: repository is required")
	case d.Scanner == nil:
		return nil, errors.New("core: scanner is required")
	case d.Workflow == nil:
		return nil, errors.New("core: migration workflow is required")
	case d.Assessor == nil:
		return nil, errors.New("core: risk assessor is required")
	}
	if d.Locks == nil {
		d.Locks = lifecycle.NewLocks()
	}
	if d.OnCommit == nil {
		d.OnCommit = func() {}
	}
	return &Service{
		repo:      d.Repo,
		scanner:   d.Scanner,
		workflow:  d.Workflow,
		assessor:  d.Assessor,
		evaluator: d.Evaluator,
		locks:     d.Locks,
		onCommit:  d.OnCommit,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func correlationID(ctx context.Context) (context.Context, string) {
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := logging.GenerateCorrelationID()
	return logging.ContextWithCorrelationID(ctx, id), id
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return &models.ValidationError{Field: "tenant_id", Message: "required"}
	}
	return nil
}
