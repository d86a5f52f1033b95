// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package risk computes the composite risk score for a Discovery and maps it to
a severity band and migration SLA.

Formula:

	risk = clamp(w_sensitivity * data_sensitivity + w_compliance * compliance_exposure, 0, 1)

The result is rounded to four decimals so identical inputs always produce an
identical, auditable score.

Bands (lower bound inclusive, boundary belongs to the higher band):

	[0.7, 1.0] critical   SLA: immediate
	[0.5, 0.7) high       SLA: 7 days
	[0.3, 0.5) medium     SLA: 30 days
	[0.0, 0.3) low        SLA: 90 days

Weights, thresholds, SLAs and breach-cost figures are configuration. Config
validation rejects weights that do not sum to 1.0 and thresholds that are not
strictly increasing.

Everything here is pure: no I/O, no clock reads except through the now
argument, no globals.
*/
package risk
