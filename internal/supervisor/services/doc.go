// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package services provides suture.Service wrappers for Pantry components that
do not already follow suture's Serve pattern.

HTTP Server (HTTPServerService):
  - Wraps *http.Server, translating ListenAndServe into Serve
  - Drains connections for a configurable timeout on shutdown

Rebuild Scheduler (RebuildSchedulerService):
  - Runs BuildRecommendationsFromHistory on startup and/or on an interval
  - A rebuild already in progress is skipped, not treated as a failure

The WAL retry loop and compactor, the similarity refresh queue, the embedded
NATS server and the purchase consumer implement Serve themselves and are
added to the tree directly.
*/
package services
