// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

// Publisher publishes purchase events behind a circuit breaker.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	subject        string
	mu             sync.RWMutex
	closed         bool
}

// NewPublisher creates a JetStream publisher. The stream must already exist
// (see EnsurePurchaseStream).
func NewPublisher(cfg PublisherConfig, subject string, logger watermill.LoggerAdapter) (*Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("pantry-publisher"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS publisher reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return &Publisher{publisher: pub, subject: subject}, nil
}

// WrapPublisher builds a Publisher over an existing watermill publisher.
func WrapPublisher(pub message.Publisher, subject string) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	return &Publisher{publisher: pub, subject: subject}, nil
}

// SetCircuitBreaker guards publishes with cb.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Publish sends msg to topic.
func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.UUID, err)
	}
	metrics.RecordNATSPublish()
	return nil
}

// PublishPurchase publishes a purchase event on the purchase subject.
func (p *Publisher) PublishPurchase(ctx context.Context, event *models.PurchaseEvent, source string) error {
	msg, err := NewPurchaseMessage(event, source)
	if err != nil {
		return err
	}
	return p.Publish(ctx, p.subject, msg)
}

// Close is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// Guarded returns a watermill publisher whose publishes go through Publish,
// so the circuit breaker and Nats-Msg-Id defaulting apply.
func (p *Publisher) Guarded() message.Publisher {
	return guardedPublisher{p: p}
}

type guardedPublisher struct {
	p *Publisher
}

func (g guardedPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if err := g.p.Publish(context.Background(), topic, msg); err != nil {
			return err
		}
	}
	return nil
}

func (g guardedPublisher) Close() error {
	return g.p.Close()
}
