// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/validation"
)

// ScanRequest optionally pins the scan window. Both bounds or neither.
type ScanRequest struct {
	Start *time.Time `json:"start" validate:"required_with=End"`
	End   *time.Time `json:"end" validate:"required_with=Start"`
}

// NoteRequest is the body of dismiss and rollback.
type NoteRequest struct {
	Note string `json:"note" validate:"max=1024"`
}

// ApprovalRequest is the approval service callback body.
type ApprovalRequest struct {
	Approved  *bool  `json:"approved" validate:"required"`
	Reference string `json:"reference" validate:"max=128"`
	Note      string `json:"note" validate:"max=1024"`
}

// DiscoveryListRequest holds the list query parameters.
type DiscoveryListRequest struct {
	Statuses   []string `json:"status" validate:"dive,discovery_status"`
	Severities []string `json:"severity" validate:"dive,severity"`
	ToolID     string   `json:"tool" validate:"max=128"`
	Limit      int      `json:"limit" validate:"gte=0,lte=500"`
	Offset     int      `json:"offset" validate:"gte=0"`
}

// DashboardRequest holds the dashboard query parameters.
type DashboardRequest struct {
	Days int `json:"days" validate:"gte=0,lte=365"`
}

// ScanHistoryRequest holds the scan history query parameters.
type ScanHistoryRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=500"`
}

// ProxyEventRequest is one connection reported by a forward proxy.
type ProxyEventRequest struct {
	DestinationHost string     `json:"destination_host" validate:"required,max=253"`
	DestinationPort int        `json:"destination_port" validate:"gte=1,lte=65535"`
	SourceIP        string     `json:"source_ip" validate:"required,ip"`
	Protocol        string     `json:"protocol" validate:"required,oneof=CONNECT HTTPS HTTP"`
	BytesSent       int64      `json:"bytes_sent" validate:"gte=0"`
	EventTimestamp  *time.Time `json:"event_timestamp" validate:"required"`
	ProxySource     string     `json:"proxy_source" validate:"required,max=128"`
	Department      string     `json:"department" validate:"max=128"`
}

// ExtensionEventRequest is one navigation reported by the browser extension.
type ExtensionEventRequest struct {
	SourceID               string     `json:"source_id" validate:"required,max=128"`
	ToolDomain             string     `json:"tool_domain" validate:"required,max=253"`
	ToolName               string     `json:"tool_name" validate:"max=128"`
	BrowserFamily          string     `json:"browser_family" validate:"required,oneof=chrome edge firefox"`
	ExtensionVersion       string     `json:"extension_version" validate:"max=32"`
	SessionDurationSeconds int        `json:"session_duration_seconds" validate:"gte=0"`
	TimestampUTC           *time.Time `json:"timestamp_utc" validate:"required"`
	Department             string     `json:"department" validate:"max=128"`
}

// decodeJSON reads an optional JSON body into v and validates it. An empty
// body leaves v at its zero value.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &models.ValidationError{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		return &models.ValidationError{Field: "body", Message: "unreadable"}
	}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return &models.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
		}
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

// queryInt parses an integer query parameter. A missing value yields def.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &models.ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

// queryList collects a repeatable, comma-separated query parameter.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseDiscoveryFilter(r *http.Request) (models.DiscoveryFilter, error) {
	req := DiscoveryListRequest{
		Statuses:   queryList(r, "status"),
		Severities: queryList(r, "severity"),
		ToolID:     r.URL.Query().Get("tool"),
	}
	var err error
	if req.Limit, err = queryInt(r, "limit", 0); err != nil {
		return models.DiscoveryFilter{}, err
	}
	if req.Offset, err = queryInt(r, "offset", 0); err != nil {
		return models.DiscoveryFilter{}, err
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return models.DiscoveryFilter{}, verr
	}

	f := models.DiscoveryFilter{ToolID: req.ToolID, Limit: req.Limit, Offset: req.Offset}
	for _, s := range req.Statuses {
		f.Statuses = append(f.Statuses, models.DiscoveryStatus(s))
	}
	for _, s := range req.Severities {
		f.Severities = append(f.Severities, models.Severity(s))
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.DiscoveryFilter{}, &models.ValidationError{Field: "since", Message: "must be RFC 3339"}
		}
		f.Since = &since
	}
	return f, nil
}
