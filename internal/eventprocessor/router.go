// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Router wraps the watermill router with the middleware every purchase
// handler runs behind. A handler error after all retries nacks the message
// so JetStream redelivers it.
type Router struct {
	router  *message.Router
	config  RouterConfig
	logger  watermill.LoggerAdapter
	running atomic.Bool
}

// NewRouter creates a router. Middleware runs outer to inner: Recoverer,
// Retry, then Throttle when enabled.
func NewRouter(cfg RouterConfig, logger watermill.LoggerAdapter) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      cfg.RetryMultiplier,
			Logger:          logger,
		}
		wmRouter.AddMiddleware(retry.Middleware)
	}

	if cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second)
		wmRouter.AddMiddleware(throttle.Middleware)
	}

	return &Router{router: wmRouter, config: cfg, logger: logger}, nil
}

// AddConsumerHandler registers a handler without output messages.
func (r *Router) AddConsumerHandler(name, topic string, sub message.Subscriber, fn message.NoPublishHandlerFunc) *message.Handler {
	return r.router.AddConsumerHandler(name, topic, sub, fn)
}

// Run blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close waits up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}
