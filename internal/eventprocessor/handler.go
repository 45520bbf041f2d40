// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Message outcomes reported to metrics.
const (
	ResultApplied   = "applied"
	ResultDuplicate = "duplicate"
	ResultJournaled = "journaled"
	ResultPoison    = "poison"
	ResultFailed    = "failed"
)

// PurchaseHandler consumes purchase messages. Malformed payloads are acked
// and copied to the poison topic; ingest failures nack for redelivery.
type PurchaseHandler struct {
	ingester    *Ingester
	poison      message.Publisher
	poisonTopic string
	log         *logging.EventLogger
}

// NewPurchaseHandler creates a handler. poison may be nil, in which case
// malformed messages are only logged.
func NewPurchaseHandler(ingester *Ingester, poison message.Publisher, poisonTopic string) *PurchaseHandler {
	return &PurchaseHandler{
		ingester:    ingester,
		poison:      poison,
		poisonTopic: poisonTopic,
		log:         logging.NewEventLogger(),
	}
}

// Handle implements message.NoPublishHandlerFunc.
func (h *PurchaseHandler) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := logging.ContextWithNewCorrelationID(msg.Context())

	event, err := UnmarshalEvent(msg.Payload)
	if err == nil {
		var result IngestResult
		result, err = h.ingester.Ingest(ctx, event, "nats")
		if err == nil {
			metrics.RecordNATSMessage(result.String(), time.Since(start))
			return nil
		}
	}

	if errors.Is(err, ErrMalformedEvent) {
		h.sendToPoison(msg, err)
		metrics.RecordNATSMessage(ResultPoison, time.Since(start))
		return nil
	}

	metrics.RecordNATSMessage(ResultFailed, time.Since(start))
	return err
}

func (h *PurchaseHandler) sendToPoison(msg *message.Message, cause error) {
	h.log.LogPoison(msg.Context(), msg.UUID, cause, 0)
	if h.poison == nil || h.poisonTopic == "" {
		return
	}

	poisoned := msg.Copy()
	poisoned.Metadata.Set("reason_poisoned", cause.Error())
	if err := h.poison.Publish(h.poisonTopic, poisoned); err != nil {
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Failed to publish to poison topic")
		return
	}
	h.log.LogPublished(msg.Context(), msg.UUID, h.poisonTopic)
}
