// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tomtom215/shadowscan/internal/migration"
	"github.com/tomtom215/shadowscan/internal/models"
)

type alternativesResponse struct {
	Alternatives []models.Alternative `json:"alternatives"`
}

// CatalogClient looks up governed alternatives.
type CatalogClient struct {
	c *client
}

var _ migration.Catalog = (*CatalogClient)(nil)

// NewCatalogClient creates a catalog client. hc may be nil.
func NewCatalogClient(cfg ServiceConfig, hc *http.Client) *CatalogClient {
	return &CatalogClient{c: newClient("catalog", cfg, hc)}
}

// Alternatives returns candidates for a tool. Unknown tools yield none.
func (c *CatalogClient) Alternatives(ctx context.Context, tenantID, toolID, category string) ([]models.Alternative, error) {
	q := url.Values{}
	q.Set("tool", toolID)
	q.Set("category", category)

	var resp alternativesResponse
	err := c.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/tenants/" + url.PathEscape(tenantID) + "/alternatives",
		query:  q,
	}, &resp)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Alternatives, nil
}
