// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import "errors"

var (
	// ErrNilPublisher is returned when a publisher is built on nil.
	ErrNilPublisher = errors.New("publisher cannot be nil")

	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrInvalidConfig wraps configuration problems.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedEvent marks payloads that can never be applied. Such
	// messages are acked and routed to the poison topic.
	ErrMalformedEvent = errors.New("malformed purchase event")
)
