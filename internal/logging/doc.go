// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package logging provides zerolog-based structured logging for Pantry.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true, Version: version})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Err(err).Str("user", userID).Msg("Failed to record purchase")
//	logging.Ctx(ctx).Info().Str("item", name).Msg("Purchase recorded")
//
// # Configuration
//
// Level, format and caller come from the logging section of the application
// config (LOG_LEVEL, LOG_FORMAT, LOG_CALLER). Every entry carries service
// and version fields.
//
// # Context Propagation
//
// The HTTP middleware stores a request ID and the acting user in the request
// context; Ctx copies them into every entry as request_id and user_id. The
// ingest pipeline uses correlation IDs derived from purchase event IDs.
//
// # Adapters
//
//   - SlogHandler: slog.Handler backed by zerolog, used by sutureslog
//   - EventLogger: purchase pipeline lifecycle messages
//
// Always terminate chains with Msg or Send; an unterminated event is dropped.
package logging
