// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter so router and
// NATS client logs share the application's format.
type WatermillLogger struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)

// NewWatermillLogger wraps logger.
func NewWatermillLogger(logger zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{logger: logger}
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Debug logs watermill's per-message chatter, which is noisy at info.
func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

// With returns an adapter that adds fields to every entry.
func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}
