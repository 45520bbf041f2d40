// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package supervisor provides process supervision for Pantry using suture v4.

Every long-running component runs as a suture.Service in a four-layer tree:

	pantry
	├── data-layer
	│   ├── wal-retry               (if wal.enabled)
	│   └── wal-compactor           (if wal.enabled)
	├── engine-layer
	│   ├── refresh-queue           similarity refresh workers
	│   └── rebuild-scheduler       (if rebuild.on_startup or rebuild.interval)
	├── messaging-layer
	│   ├── nats-embedded           (if nats.embedded_server)
	│   └── nats-purchase-consumer  (if nats.enabled)
	└── api-layer
	    └── http-server

Crashed services restart with suture's backoff. Failures are counted per
layer, so a consumer that cannot reach NATS does not take the HTTP API down.

Supervisor events are logged through sutureslog, backed by the zerolog
slog adapter in the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
