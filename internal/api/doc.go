// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package api provides the HTTP API of the Pantry service.

Routes (Chi router):

	GET   /health                                      liveness, database, NATS and WAL state
	GET   /metrics                                     Prometheus metrics
	GET   /api/v1/recommendations?user_id=&list_id=    ranked recommendations
	GET   /api/v1/recommendations/similar-users        users with overlapping purchases
	GET   /api/v1/recommendations/collaborative        items similar users buy
	POST  /api/v1/recommendations/rebuild              recompute all records from the purchase log
	POST  /api/v1/recommendations/add-to-list          put a recommended item on a list
	POST  /api/v1/purchases                            ingest a purchase event
	POST  /api/v1/lists                                create a shared list
	GET   /api/v1/lists/{id}                           list with members and items
	PATCH /api/v1/lists/{id}                           set completed/archived
	POST  /api/v1/lists/{id}/items                     add an item
	POST  /api/v1/lists/{id}/items/{itemId}/purchase   check an item off and record the purchase

Every response uses the models.APIResponse envelope, encoded with goccy/go-json:

	{"status": "success", "data": ..., "metadata": {"timestamp": ..., "query_time_ms": 3}}
	{"status": "error", "error": {"code": "NOT_FOUND", "message": "list not found"}, ...}

Request bodies are limited to 1 MiB and validated with go-playground/validator
(see the validation package). Handlers under /api/v1 run with a 10 second
timeout except the rebuild, which runs until the client disconnects.

Purchases from both purchase routes go through eventprocessor.Ingester, the
same path the NATS consumer uses, so deduplication and WAL journaling apply
to every source.
*/
package api
