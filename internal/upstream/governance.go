// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/shadowscan/internal/models"
)

// GovernanceClient asks the policy evaluator for risk inputs and overrides.
type GovernanceClient struct {
	c *client
}

// NewGovernanceClient creates an evaluator client. hc may be nil.
func NewGovernanceClient(cfg ServiceConfig, hc *http.Client) *GovernanceClient {
	return &GovernanceClient{c: newClient("governance", cfg, hc)}
}

// Evaluate returns the policy verdict for a Discovery. A 404 means no policy
// applies and yields an empty Evaluation.
func (g *GovernanceClient) Evaluate(ctx context.Context, req models.EvaluationRequest) (models.Evaluation, error) {
	var ev models.Evaluation
	err := g.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/evaluations",
		body:   req,
	}, &ev)
	if IsStatus(err, http.StatusNotFound) {
		return models.Evaluation{}, nil
	}
	if err != nil {
		return models.Evaluation{}, err
	}
	if err := validateEvaluation(&ev); err != nil {
		return models.Evaluation{}, &models.UpstreamUnavailableError{Service: "governance", Attempts: 1, Err: err}
	}
	return ev, nil
}

func validateEvaluation(ev *models.Evaluation) error {
	for name, v := range map[string]*float64{
		"data_sensitivity":    ev.DataSensitivity,
		"compliance_exposure": ev.ComplianceExposure,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s %v outside [0,1]", name, *v)
		}
	}
	if ev.OverrideSeverity != "" && !ev.OverrideSeverity.Valid() {
		return fmt.Errorf("unknown override severity %q", ev.OverrideSeverity)
	}
	return nil
}
