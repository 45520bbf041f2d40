// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package eventprocessor moves purchase events into the recommendation engine.

Purchases reach the engine through one Ingester regardless of transport:

	HTTP handler ----\
	NATS consumer ----+--> Ingester --> WAL --> event log --> engine --> WAL confirm
	WAL replay ------/

The NATS side uses Watermill over JetStream:

  - EmbeddedServer runs nats-server in process for single-node installs
  - EnsurePurchaseStream provisions the PURCHASES stream (file storage,
    Nats-Msg-Id duplicate window)
  - Publisher publishes events behind a gobreaker circuit breaker
  - Consumer runs a Watermill router (Recoverer, Retry, optional Throttle)
    with PurchaseHandler as a suture.Service

Delivery rules:

  - Undecodable or invalid payloads are acked and copied to the poison topic
  - Event ids seen recently (LRU) or already in the event log are skipped
  - With the WAL enabled a failed apply is acked and retried by wal.RetryLoop;
    without it the message is nacked for JetStream redelivery

Logs from Watermill and the NATS client go through WatermillLogger, a
zerolog adapter.
*/
package eventprocessor
