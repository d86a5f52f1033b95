// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of them.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrExpiryRace          = errors.New("expiry race")
	ErrInvalidTransition   = errors.New("invalid state transition")
)

// ConfigurationError is fatal at load time.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ConflictError is returned for a duplicate active plan, a concurrent
// transition on the same entity, or a scan already running for a tenant.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError references an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UpstreamUnavailableError means a collaborator call failed or timed out after
// retries. The entity it was acting on is left in its last stable state.
type UpstreamUnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream %s unavailable after %d attempt(s): %v", e.Service, e.Attempts, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func (e *UpstreamUnavailableError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// Retryable is always true; callers may try again later.
func (e *UpstreamUnavailableError) Retryable() bool { return true }

// ExpiryRaceError is produced when the expiry sweep and a callback contend for
// the same plan and the plan is already terminal. It never leaves the
// migration package.
type ExpiryRaceError struct {
	PlanID    string
	Current   PlanStatus
	Attempted PlanStatus
}

func (e *ExpiryRaceError) Error() string {
	return fmt.Sprintf("plan %s already %s, cannot move to %s", e.PlanID, e.Current, e.Attempted)
}

func (e *ExpiryRaceError) Is(target error) bool { return target == ErrExpiryRace }

// TransitionError is a state-machine rejection. The entity is unchanged.
type TransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s %s: transition %s -> %s not allowed", e.Entity, e.ID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
