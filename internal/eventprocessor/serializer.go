// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/pantry/internal/models"
)

// Metadata keys set on published purchase messages.
const (
	MetadataUserID = "user_id"
	MetadataItem   = "item_name"
	MetadataSource = "source"
)

// NormalizeEvent fills defaults on a decoded event and rejects events that
// cannot be applied. A missing event id or date is generated.
func NormalizeEvent(event *models.PurchaseEvent, now time.Time) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrMalformedEvent)
	}
	event.UserID = strings.TrimSpace(event.UserID)
	event.ItemName = strings.TrimSpace(event.ItemName)
	if event.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrMalformedEvent)
	}
	if event.ItemName == "" {
		return fmt.Errorf("%w: item_name is required", ErrMalformedEvent)
	}
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Date.IsZero() {
		event.Date = now
	}
	event.Quantity = models.SanitizeQuantity(event.Quantity)
	event.Price = models.SanitizePrice(event.Price)
	return nil
}

// MarshalEvent encodes a purchase event.
func MarshalEvent(event *models.PurchaseEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes a purchase event. Decode failures wrap
// ErrMalformedEvent.
func UnmarshalEvent(data []byte) (*models.PurchaseEvent, error) {
	var event models.PurchaseEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return &event, nil
}

// NewPurchaseMessage builds a watermill message for event. The event id is
// the message UUID and the JetStream Nats-Msg-Id so the stream's duplicate
// window drops republished events.
func NewPurchaseMessage(event *models.PurchaseEvent, source string) (*message.Message, error) {
	data, err := MarshalEvent(event)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set(MetadataUserID, event.UserID)
	msg.Metadata.Set(MetadataItem, event.ItemName)
	if source != "" {
		msg.Metadata.Set(MetadataSource, source)
	}
	return msg, nil
}
