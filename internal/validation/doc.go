// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is shared process wide. Field names in errors
are taken from json tags, so messages match the request body the client
sent.

Custom tags:

  - severity: low, medium, high or critical
  - discovery_status: detected, assessed, notified, migrating, migrated or dismissed
  - tenant_id: 1-64 letters, digits, '-' or '_', starting with a letter or digit

Example:

	type approvalRequest struct {
	    Approved  bool   `json:"approved"`
	    Reference string `json:"reference" validate:"omitempty,max=128"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    respondError(w, http.StatusBadRequest, verr.ToAPIError())
	    return
	}

Signature entries in the configuration are checked with the same validator
before the classifier registry applies its own pattern rules.
*/
package validation
