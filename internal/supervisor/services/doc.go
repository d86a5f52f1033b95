// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package services provides the suture.Service implementations run by the
supervisor tree.

  - HTTPServerService: the API listener, with graceful shutdown
  - ScanScheduler: periodic scans of the configured tenants, optionally
    assessing what they detect
  - ExpirySweeperService: closes migration plans past their horizon
  - StoreMaintenanceService: outbox gauges and BadgerDB value log GC

The outbox relay (events.Relay), the websocket hub and the event feed
implement suture.Service themselves and are added to the tree directly.

Periodic services run their first pass as soon as they start, then on a
ticker. A failing pass is logged and retried on the next tick; Serve only
returns when its context is canceled, so suture restarts are reserved for
real crashes.
*/
package services
