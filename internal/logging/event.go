// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger logs the lifecycle of purchase events flowing through the
// ingest pipeline (HTTP hook, NATS subscriber, WAL replay).
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger uses the global logger tagged component=eventprocessor.
func NewEventLogger() *EventLogger {
	return &EventLogger{logger: WithComponent("eventprocessor")}
}

// NewEventLoggerWithLogger uses logger as is.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

func (e *EventLogger) with(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &e.logger
	}
	logCtx := e.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	l := logCtx.Logger()
	return &l
}

// LogPurchaseReceived logs a purchase entering the pipeline.
func (e *EventLogger) LogPurchaseReceived(ctx context.Context, eventID, userID, itemName, source string) {
	e.with(ctx).Debug().
		Str("event_id", eventID).
		Str("user_id", userID).
		Str("item", itemName).
		Str("source", source).
		Msg("Purchase received")
}

// LogPurchaseApplied logs a purchase folded into the user's record.
func (e *EventLogger) LogPurchaseApplied(ctx context.Context, eventID string, took time.Duration) {
	e.with(ctx).Debug().
		Str("event_id", eventID).
		Dur("took", took).
		Msg("Purchase applied")
}

// LogPurchaseFailed logs a purchase that could not be applied.
func (e *EventLogger) LogPurchaseFailed(ctx context.Context, eventID string, err error) {
	e.with(ctx).Error().
		Err(err).
		Str("event_id", eventID).
		Msg("Purchase failed")
}

// LogDuplicate logs a purchase dropped by deduplication.
func (e *EventLogger) LogDuplicate(ctx context.Context, eventID, reason string) {
	e.with(ctx).Debug().
		Str("event_id", eventID).
		Str("reason", reason).
		Msg("Duplicate purchase skipped")
}

// LogPoison logs a message moved to the poison topic after retries.
func (e *EventLogger) LogPoison(ctx context.Context, eventID string, err error, retries int) {
	e.with(ctx).Warn().
		Err(err).
		Str("event_id", eventID).
		Int("retries", retries).
		Msg("Purchase moved to poison queue")
}

// LogPublished logs a purchase published to the message bus.
func (e *EventLogger) LogPublished(ctx context.Context, eventID, topic string) {
	e.with(ctx).Debug().
		Str("event_id", eventID).
		Str("topic", topic).
		Msg("Purchase published")
}

// LogReplay logs the outcome of a WAL recovery pass.
func (e *EventLogger) LogReplay(recovered, failed int, took time.Duration) {
	ev := e.logger.Info()
	if failed > 0 {
		ev = e.logger.Warn()
	}
	ev.Int("recovered", recovered).
		Int("failed", failed).
		Dur("took", took).
		Msg("WAL replay finished")
}

// LogSubscriptionStarted logs the start of a subscription.
func (e *EventLogger) LogSubscriptionStarted(topic, queue string) {
	e.logger.Info().
		Str("topic", topic).
		Str("queue", queue).
		Msg("Subscription started")
}

// LogSubscriptionStopped logs the end of a subscription.
func (e *EventLogger) LogSubscriptionStopped(topic string) {
	e.logger.Info().Str("topic", topic).Msg("Subscription stopped")
}

// LogRouterStarted logs the message router becoming ready.
func (e *EventLogger) LogRouterStarted() {
	e.logger.Info().Msg("Message router started")
}

// LogRouterStopped logs the message router shutting down.
func (e *EventLogger) LogRouterStopped() {
	e.logger.Info().Msg("Message router stopped")
}
