// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/shadowscan/internal/models"
)

// Prefix keys for different record types
const (
	prefixDiscovery     = "disc:"
	prefixDiscoveryKey  = "dkey:"
	prefixPlan          = "plan:"
	prefixActivePlan    = "aplan:"
	prefixLatestPlan    = "lplan:"
	prefixPlanExpiry    = "pexp:"
	prefixScan          = "scan:"
	prefixWindow        = "win:"
	prefixPushed        = "push:"
	prefixOutboxPending = "outbox:pending:"
	prefixOutboxSent    = "outbox:sent:"
)

// ts renders t as a fixed-width sortable key component.
func ts(t time.Time) string {
	return fmt.Sprintf("%020d", t.UTC().UnixNano())
}

func checkTenant(tenantID string) error {
	if tenantID == "" {
		return &models.ValidationError{Field: "tenant_id", Message: "required"}
	}
	if strings.Contains(tenantID, ":") {
		return &models.ValidationError{Field: "tenant_id", Message: "must not contain ':'"}
	}
	return nil
}

func discoveryKey(tenantID, id string) []byte {
	return []byte(prefixDiscovery + tenantID + ":" + id)
}

func discoveryPrefix(tenantID string) []byte {
	return []byte(prefixDiscovery + tenantID + ":")
}

// groupingKey length-prefixes the tool id so a ':' in either free-form part
// cannot shift the boundary between tool and population.
func groupingKey(tenantID, toolID, population string) []byte {
	return []byte(prefixDiscoveryKey + tenantID + ":" + strconv.Itoa(len(toolID)) + ":" + toolID + ":" + population)
}

func planKey(tenantID, id string) []byte {
	return []byte(prefixPlan + tenantID + ":" + id)
}

func planPrefix(tenantID string) []byte {
	return []byte(prefixPlan + tenantID + ":")
}

func activePlanKey(tenantID, discoveryID string) []byte {
	return []byte(prefixActivePlan + tenantID + ":" + discoveryID)
}

func latestPlanKey(tenantID, discoveryID string) []byte {
	return []byte(prefixLatestPlan + tenantID + ":" + discoveryID)
}

func planExpiryKey(p *models.MigrationPlan) []byte {
	return []byte(prefixPlanExpiry + ts(p.ExpiresAt) + ":" + p.TenantID + ":" + p.ID)
}

func scanKey(r *models.ScanResult) []byte {
	return []byte(prefixScan + r.TenantID + ":" + ts(r.StartedAt) + ":" + r.ID)
}

func scanPrefix(tenantID string) []byte {
	return []byte(prefixScan + tenantID + ":")
}

func windowKey(tenantID string, start time.Time) []byte {
	return []byte(prefixWindow + tenantID + ":" + ts(start))
}

func windowPrefix(tenantID string) []byte {
	return []byte(prefixWindow + tenantID + ":")
}

func pushedKey(tenantID string, at time.Time, id string) []byte {
	return []byte(prefixPushed + tenantID + ":" + ts(at) + ":" + id)
}

func pushedPrefix(tenantID string) []byte {
	return []byte(prefixPushed + tenantID + ":")
}
