// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package config provides centralized configuration management for Shadowscan.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig, which reuses each package's DefaultConfig)
 2. An optional YAML file: CONFIG_PATH, or the first of DefaultConfigPaths
 3. Environment variables, through the explicit mapping in envTransformFunc

List values (api.cors_origins, scan.tenants, classifier.credential_patterns)
accept comma-separated strings from the environment.

# Configuration Structure

  - Server: HTTP listener and timeouts
  - API: CORS, rate limiting, body size and request timeout
  - Logging: zerolog level and format
  - Supervisor: suture restart policy
  - Classifier: signature registry and credential key patterns
  - Store: BadgerDB location and maintenance
  - Scan: population granularity, volume heuristic, scheduler tenants
  - Risk: weights, thresholds, remediation SLAs, breach cost table
  - Migration: plan expiry horizon and sweep interval
  - Events: transport (channel or NATS JetStream) and outbox relay
  - Upstream: metadata, governance, catalog and approval services

Signatures are usually supplied in the file:

	classifier:
	  extend_defaults: true
	  signatures:
	    - pattern: "*.internal-llm.example.com"
	      tool_id: internal-llm
	      category: llm.chat
	      data_sensitivity: 0.4
	      compliance_exposure: 0.2

# Validation

Validate returns a *models.ConfigurationError naming the offending field.
Domain sections are validated by their own packages; the classifier
registry is compiled once during validation so a malformed signature fails
startup instead of the first scan.

# Common environment variables

  - HTTP_PORT, ENVIRONMENT, LOG_LEVEL, LOG_FORMAT
  - STORE_PATH, STORE_IN_MEMORY
  - SCAN_TENANTS, SCAN_INTERVAL, SCAN_POPULATION
  - EVENTS_TRANSPORT, NATS_URL, NATS_EMBEDDED
  - METADATA_URL, GOVERNANCE_URL, CATALOG_URL, APPROVALS_URL (and *_TOKEN)
  - CATALOG_CACHE_TTL (0 disables the alternatives cache)
  - INGEST_API_KEY, INGEST_SOURCE_KEY, INGEST_RETENTION, INGEST_DEDUP_WINDOW
*/
package config
