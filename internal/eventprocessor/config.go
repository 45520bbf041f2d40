// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/tomtom215/pantry/internal/config"
)

// ServerConfig configures the embedded NATS JetStream server.
type ServerConfig struct {
	Name              string
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
	// MaxPayload bounds a single message. Purchase events are a few
	// hundred bytes; the default leaves room for batch publishers.
	MaxPayload int32
	// ReadyTimeout is how long startup waits for client connections.
	ReadyTimeout time.Duration
}

// StreamConfig configures the purchase stream.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// PublisherConfig configures the purchase publisher.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// SubscriberConfig configures the durable purchase consumer.
type SubscriberConfig struct {
	URL              string
	StreamName       string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	MaxDeliver       int
	MaxAckPending    int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// RouterConfig configures the watermill router middleware.
type RouterConfig struct {
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	ThrottlePerSecond    int64
}

// CircuitBreakerConfig configures a gobreaker instance.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Config bundles everything the purchase pipeline needs.
type Config struct {
	Enabled        bool
	EmbeddedServer bool
	Subject        string
	PoisonTopic    string
	Server         ServerConfig
	Stream         StreamConfig
	Publisher      PublisherConfig
	Subscriber     SubscriberConfig
	Router         RouterConfig
	Breaker        CircuitBreakerConfig
}

// DefaultServerConfig returns embedded server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:              "pantry-purchases",
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/nats/jetstream",
		JetStreamMaxMem:   128 * 1024 * 1024,
		JetStreamMaxStore: 1024 * 1024 * 1024,
		MaxPayload:        256 * 1024,
		ReadyTimeout:      30 * time.Second,
	}
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// DefaultCircuitBreakerConfig returns breaker defaults for name.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// FromSettings derives the pipeline configuration from the application's
// nats section.
func FromSettings(s *config.NATSConfig) Config {
	router := DefaultRouterConfig()
	if s.RouterRetryCount >= 0 {
		router.RetryMaxRetries = s.RouterRetryCount
	}
	if s.RouterRetryInitialInterval > 0 {
		router.RetryInitialInterval = s.RouterRetryInitialInterval
	}
	if s.RouterCloseTimeout > 0 {
		router.CloseTimeout = s.RouterCloseTimeout
	}

	server := DefaultServerConfig()
	if s.StoreDir != "" {
		server.StoreDir = s.StoreDir
	}
	if s.MaxMemory > 0 {
		server.JetStreamMaxMem = s.MaxMemory
	}
	if s.MaxStore > 0 {
		server.JetStreamMaxStore = s.MaxStore
	}

	subjects := []string{s.Subject}
	if s.RouterPoisonTopic != "" && s.RouterPoisonTopic != s.Subject {
		subjects = append(subjects, s.RouterPoisonTopic)
	}

	return Config{
		Enabled:        s.Enabled,
		EmbeddedServer: s.EmbeddedServer,
		Subject:        s.Subject,
		PoisonTopic:    s.RouterPoisonTopic,
		Server:         server,
		Stream: StreamConfig{
			Name:            s.StreamName,
			Subjects:        subjects,
			MaxAge:          time.Duration(s.StreamRetentionDays) * 24 * time.Hour,
			MaxBytes:        s.MaxStore,
			MaxMsgs:         -1,
			DuplicateWindow: 2 * time.Minute,
			Replicas:        1,
		},
		Publisher: PublisherConfig{
			URL:              s.URL,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
			ReconnectBuffer:  8 * 1024 * 1024,
			EnableTrackMsgID: true,
		},
		Subscriber: SubscriberConfig{
			URL:              s.URL,
			StreamName:       s.StreamName,
			DurableName:      s.DurableName,
			QueueGroup:       s.QueueGroup,
			SubscribersCount: s.SubscribersCount,
			MaxDeliver:       10,
			MaxAckPending:    1000,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     router.CloseTimeout,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
		},
		Router:  router,
		Breaker: DefaultCircuitBreakerConfig("purchase-ingest"),
	}
}

// Validate checks the fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidConfig)
	}
	if c.Stream.Name == "" {
		return fmt.Errorf("%w: stream name is required", ErrInvalidConfig)
	}
	if c.Subscriber.SubscribersCount < 1 {
		return fmt.Errorf("%w: subscribers count must be at least 1", ErrInvalidConfig)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: router retries cannot be negative", ErrInvalidConfig)
	}
	return nil
}
