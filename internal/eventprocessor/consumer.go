// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/pantry/internal/logging"
)

const purchaseHandlerName = "purchase-ingest"

// Consumer runs the purchase router as a suture.Service. Each Serve call
// opens a fresh subscriber so a supervisor restart reconnects.
type Consumer struct {
	subject       string
	queueGroup    string
	routerConfig  RouterConfig
	handler       *PurchaseHandler
	logger        watermill.LoggerAdapter
	newSubscriber func() (message.Subscriber, error)
	events        *logging.EventLogger
}

// NewConsumer consumes cfg.Subject from JetStream.
func NewConsumer(cfg *Config, handler *PurchaseHandler, logger watermill.LoggerAdapter) *Consumer {
	subCfg := cfg.Subscriber
	return &Consumer{
		subject:      cfg.Subject,
		queueGroup:   subCfg.QueueGroup,
		routerConfig: cfg.Router,
		handler:      handler,
		logger:       logger,
		newSubscriber: func() (message.Subscriber, error) {
			return NewSubscriber(&subCfg, logger)
		},
		events: logging.NewEventLogger(),
	}
}

// NewConsumerWithSubscriber consumes subject from sub, which is reused on
// every Serve call.
func NewConsumerWithSubscriber(subject string, routerCfg RouterConfig, sub message.Subscriber, handler *PurchaseHandler, logger watermill.LoggerAdapter) *Consumer {
	return &Consumer{
		subject:       subject,
		routerConfig:  routerCfg,
		handler:       handler,
		logger:        logger,
		newSubscriber: func() (message.Subscriber, error) { return sub, nil },
		events:        logging.NewEventLogger(),
	}
}

// Serve runs until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	sub, err := c.newSubscriber()
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close purchase subscriber")
		}
	}()

	router, err := NewRouter(c.routerConfig, c.logger)
	if err != nil {
		return err
	}
	router.AddConsumerHandler(purchaseHandlerName, c.subject, sub, c.handler.Handle)

	c.events.LogSubscriptionStarted(c.subject, c.queueGroup)
	c.events.LogRouterStarted()
	defer func() {
		c.events.LogRouterStopped()
		c.events.LogSubscriptionStopped(c.subject)
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("purchase router: %w", err)
	}
	return ctx.Err()
}

// String identifies the service in supervisor logs.
func (c *Consumer) String() string {
	return "nats-purchase-consumer"
}
