// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"context"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/supervisor"
)

// natsComponents holds the connections main must close on shutdown.
type natsComponents struct {
	publisher *eventprocessor.Publisher
	status    *natsgo.Conn
}

// Connected reports whether the status connection is up. Health uses it.
func (n *natsComponents) Connected() bool {
	return n != nil && n.status != nil && n.status.IsConnected()
}

// Close releases the poison publisher and the status connection. It is safe
// on a nil receiver so main can defer it unconditionally.
func (n *natsComponents) Close() {
	if n == nil {
		return
	}
	if n.publisher != nil {
		if err := n.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing NATS publisher")
		}
	}
	if n.status != nil {
		n.status.Close()
	}
}

// initNATS wires the JetStream purchase consumer. It returns nil when NATS
// is disabled.
func initNATS(ctx context.Context, cfg *config.Config, ingester *eventprocessor.Ingester, tree *supervisor.SupervisorTree) (*natsComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS disabled, purchases arrive over HTTP only")
		return nil, nil
	}

	natsCfg := eventprocessor.FromSettings(&cfg.NATS)
	if err := natsCfg.Validate(); err != nil {
		return nil, err
	}

	if natsCfg.EmbeddedServer {
		srv, err := eventprocessor.NewEmbeddedServer(&natsCfg.Server, logging.WithComponent("nats-server"))
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		natsCfg.Publisher.URL = srv.ClientURL()
		natsCfg.Subscriber.URL = srv.ClientURL()
		tree.AddMessagingService(srv)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := eventprocessor.EnsurePurchaseStream(streamCtx, natsCfg.Publisher.URL, &natsCfg.Stream); err != nil {
		return nil, fmt.Errorf("ensure purchase stream: %w", err)
	}

	wmLogger := eventprocessor.NewWatermillLogger(logging.WithComponent("watermill"))

	publisher, err := eventprocessor.NewPublisher(natsCfg.Publisher, natsCfg.PoisonTopic, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create poison publisher: %w", err)
	}
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
		eventprocessor.DefaultCircuitBreakerConfig("nats-poison-publisher"),
		logging.WithComponent("breaker"),
	))
	components := &natsComponents{publisher: publisher}

	handler := eventprocessor.NewPurchaseHandler(ingester, publisher.Guarded(), natsCfg.PoisonTopic)
	tree.AddMessagingService(eventprocessor.NewConsumer(&natsCfg, handler, wmLogger))

	status, err := natsgo.Connect(natsCfg.Publisher.URL,
		natsgo.Name("pantry-health"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("connect NATS status client: %w", err)
	}
	components.status = status

	logging.Info().
		Str("url", natsCfg.Publisher.URL).
		Str("stream", natsCfg.Stream.Name).
		Str("subject", natsCfg.Subject).
		Str("poison_topic", natsCfg.PoisonTopic).
		Msg("NATS purchase consumer added to supervisor tree")
	return components, nil
}
