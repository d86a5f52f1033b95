// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

/*
Package ingest accepts observations pushed by forward proxies and the browser
extension, and feeds them to scans as a second metadata source.

A pushed event is classified on arrival. Events for hosts outside the
signature registry are counted and dropped; matched events are buffered in
the store under their own timestamp with a retention TTL. Source combines the
upstream collector with that buffer so a scan of a window reads both, and a
rerun of the same window reads the same pushed events again.

Proxy events identify the client by IP address. The address is replaced by a
keyed pseudonym before anything is stored or logged, so the distinct-source
count still works without keeping the address. Extension navigations repeat
constantly; a navigation from the same source to the same host inside the
dedup window is acknowledged but not buffered again.

Events are only counted by scans of the window they fall in. Events that
arrive after their window was scanned are picked up when that window is
rerun.
*/
package ingest
