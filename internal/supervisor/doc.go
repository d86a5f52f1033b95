// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package supervisor provides process supervision for Shadowscan using suture v4.

Every long-running component of the server runs under a three-layer tree so a
crash is restarted where it happened:

	shadowscan (root)
	├── data-layer
	│   └── store-maintenance     badger GC and outbox gauges
	├── messaging-layer
	│   ├── outbox-relay          outbox to watermill publisher
	│   ├── websocket-hub         live feed fan-out
	│   └── event-feed            subscriber feeding the hub
	└── api-layer
	    ├── http-server
	    ├── scan-scheduler        periodic per-tenant scans
	    └── expiry-sweeper        stale migration plans

A relay that keeps failing against an unreachable broker backs off inside
the messaging layer; the HTTP API keeps serving.

# Configuration

TreeConfig mirrors suture.Spec. Zero fields take DefaultTreeConfig values:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

These are set from the supervisor section of the config file.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogger, treeCfg)
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewStoreMaintenanceService(st, st.GCInterval()))
	tree.AddMessagingService(relay)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Service Contract

Services implement suture.Service. Returning nil stops the service for good,
returning an error restarts it, and on context cancellation the service must
return promptly. Services that outlive ShutdownTimeout are listed by
UnstoppedServiceReport.

Supervisor events are logged through sutureslog on the root supervisor.
*/
package supervisor
