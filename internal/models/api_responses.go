// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint returns.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "CONFLICT",
//	    "message": "conflict on discovery 7d3e...: active migration plan exists"
//	  },
//	  "metadata": {"timestamp": "2026-10-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time       `json:"timestamp"`
	RequestID   string          `json:"request_id,omitempty"`
	QueryTimeMS int64           `json:"query_time_ms,omitempty"`
	Pagination  *PaginationInfo `json:"pagination,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes:
//   - VALIDATION_ERROR: invalid input
//   - NOT_FOUND: unknown discovery or plan
//   - CONFLICT: duplicate active plan, concurrent transition, scan in progress
//   - INVALID_TRANSITION: edge not allowed by the lifecycle
//   - UPSTREAM_UNAVAILABLE: governance, catalog or approval service down; retry later
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset-paginated list.
type PaginationInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}
