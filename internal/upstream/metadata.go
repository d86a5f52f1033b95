// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/scan"
)

// wireObservation is the collector's JSON shape. Unlike
// models.RawObservation it decodes the auth header value.
type wireObservation struct {
	TenantID   string                 `json:"tenant_id"`
	SourceID   string                 `json:"source_id"`
	Department string                 `json:"department,omitempty"`
	Host       string                 `json:"host"`
	Method     models.DetectionMethod `json:"method"`
	Timestamp  time.Time              `json:"timestamp"`
	AuthHeader string                 `json:"auth_header,omitempty"`
}

type observationPage struct {
	Observations []wireObservation `json:"observations"`
	NextCursor   string            `json:"next_cursor"`
}

// MetadataClient pages observations from the network metadata collector.
type MetadataClient struct {
	c *client
}

var _ scan.MetadataSource = (*MetadataClient)(nil)

// NewMetadataClient creates a collector client. hc may be nil.
func NewMetadataClient(cfg ServiceConfig, hc *http.Client) *MetadataClient {
	return &MetadataClient{c: newClient("metadata", cfg, hc)}
}

// Fetch returns one page of observations for the tenant and window.
func (m *MetadataClient) Fetch(ctx context.Context, tenantID string, w models.Window, cursor string, limit int) (scan.Batch, error) {
	q := url.Values{}
	q.Set("start", w.Start.UTC().Format(time.RFC3339Nano))
	q.Set("end", w.End.UTC().Format(time.RFC3339Nano))
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page observationPage
	err := m.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/tenants/" + url.PathEscape(tenantID) + "/observations",
		query:  q,
	}, &page)
	if err != nil {
		return scan.Batch{}, err
	}

	batch := scan.Batch{
		Observations: make([]models.RawObservation, len(page.Observations)),
		NextCursor:   page.NextCursor,
	}
	for i, o := range page.Observations {
		batch.Observations[i] = models.RawObservation{
			TenantID:   o.TenantID,
			SourceID:   o.SourceID,
			Department: o.Department,
			Host:       o.Host,
			Method:     o.Method,
			Timestamp:  o.Timestamp,
			AuthHeader: o.AuthHeader,
		}
	}
	return batch, nil
}
