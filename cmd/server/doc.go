// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

// Package main is the entry point for the Shadowscan server.
//
// Shadowscan finds unsanctioned AI tool usage in network metadata (DNS, SNI,
// CONNECT tunnels and credential-shaped auth headers), scores the risk of each
// discovery, and drives it through notification and migration to a
// sanctioned alternative.
//
// # Startup
//
//  1. Configuration: koanf layers (defaults, config.yaml, environment)
//  2. Store: BadgerDB holding discoveries, plans, scan results and the outbox
//  3. Events: gochannel or NATS JetStream transport, outbox relay
//  4. Collaborators: metadata, governance, catalog and approval HTTP clients
//  5. Domain: classifier, risk assessor, scanner, migration workflow
//  6. HTTP: chi router with the websocket live feed
//  7. Supervisor tree: every long-running service runs under suture
//
// # Configuration
//
// Common environment variables:
//
//	HTTP_PORT=8470
//	ENVIRONMENT=production
//	LOG_LEVEL=info
//	STORE_PATH=/data/shadowscan/store
//	SCAN_TENANTS=acme,globex
//	METADATA_URL=https://metadata.internal
//	GOVERNANCE_URL=https://policy.internal
//	CATALOG_URL=https://catalog.internal
//	APPROVALS_URL=https://approvals.internal
//	EVENTS_TRANSPORT=nats
//	NATS_URL=nats://nats:4222
//
// Changing logging.level in the config file takes effect without a restart.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains, the
// relay finishes its batch, and the store is closed last.
//
// # API documentation
//
// Handlers in internal/api carry swag annotations. Generate the OpenAPI
// document with:
//
//	swag init -g cmd/server/doc.go -d ./,internal/api -o api/openapi
//
// @title Shadowscan API
// @version 1.0
// @description Shadow AI discovery, risk scoring and migration governance.
// @description Errors use the envelope {"status":"error","error":{"code","message"}}.
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
// @BasePath /api/v1
// @securityDefinitions.apikey IngestKey
// @in header
// @name X-Ingest-Key
package main
