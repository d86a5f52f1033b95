// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package models

// InputSourceGovernance marks RiskInputs supplied by the policy evaluator.
const InputSourceGovernance = "governance"

// Evaluation is a governance policy verdict for one Discovery. Nil inputs
// leave the current value in place.
type Evaluation struct {
	DataSensitivity    *float64 `json:"data_sensitivity,omitempty"`
	ComplianceExposure *float64 `json:"compliance_exposure,omitempty"`
	OverrideSeverity   Severity `json:"override_severity,omitempty"`
	PolicyRef          string   `json:"policy_ref,omitempty"`
}

// EvaluationRequest is what the evaluator is told about a Discovery. It
// carries metadata only.
type EvaluationRequest struct {
	TenantID            string            `json:"tenant_id"`
	DiscoveryID         string            `json:"discovery_id"`
	ToolID              string            `json:"tool_id"`
	Provider            string            `json:"provider"`
	Category            string            `json:"category"`
	Population          string            `json:"population"`
	Methods             []DetectionMethod `json:"methods"`
	Frequency           int64             `json:"frequency"`
	VolumeBucket        VolumeBucket      `json:"volume_bucket"`
	CredentialIndicator bool              `json:"credential_indicator"`
}

// NewEvaluationRequest builds the request for d.
func NewEvaluationRequest(d *Discovery) EvaluationRequest {
	return EvaluationRequest{
		TenantID:            d.TenantID,
		DiscoveryID:         d.ID,
		ToolID:              d.ToolID,
		Provider:            d.Provider,
		Category:            d.Category,
		Population:          d.Population,
		Methods:             d.Methods,
		Frequency:           d.Frequency,
		VolumeBucket:        d.VolumeBucket,
		CredentialIndicator: d.CredentialIndicator,
	}
}
