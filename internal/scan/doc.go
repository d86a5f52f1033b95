// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package scan turns a window of network metadata into Discovery upserts.
//
// A Scanner run pulls RawObservation batches from a MetadataSource,
// classifies each one, groups the matches by (tenant, tool, population) in an
// Aggregator and then commits one transaction per group. Every run records
// exactly one ScanResult, including runs that matched nothing and runs that
// were cancelled between batches.
//
// # Idempotence
//
// Frequency is never incremented in place. Each Discovery keeps a ledger of
// what every scan window contributed; committing a window replaces that
// window's entry and the totals are recomputed from the ledger. Scanning the
// same window twice therefore leaves frequency and volume unchanged. Windows
// that overlap an earlier, different window are rejected, and only one scan
// per tenant may run at a time.
//
// # Volume
//
// Content is never read, so volume is an estimate:
//
//	activity = frequency * (1 + diversity_factor * (distinct_methods - 1))
//
// bucketed by ascending thresholds into minimal, low, moderate, high and
// very_high.
package scan
