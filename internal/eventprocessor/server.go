// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

// EmbeddedServer is an in-process JetStream server that holds the purchase
// stream for single-node households. It implements suture.Service.
type EmbeddedServer struct {
	ns     *server.Server
	name   string
	logger zerolog.Logger
}

func (c *ServerConfig) options() *server.Options {
	name := c.Name
	if name == "" {
		name = DefaultServerConfig().Name
	}
	return &server.Options{
		ServerName:         name,
		Host:               c.Host,
		Port:               c.Port,
		JetStream:          true,
		StoreDir:           c.StoreDir,
		JetStreamMaxMemory: c.JetStreamMaxMem,
		JetStreamMaxStore:  c.JetStreamMaxStore,
		MaxPayload:         c.MaxPayload,
		NoSigs:             true,
	}
}

// NewEmbeddedServer starts the server and returns once it accepts client
// connections. Port -1 picks a free port.
func NewEmbeddedServer(cfg *ServerConfig, logger zerolog.Logger) (*EmbeddedServer, error) {
	opts := cfg.options()
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server %s: %w", opts.ServerName, err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	wait := cfg.ReadyTimeout
	if wait <= 0 {
		wait = DefaultServerConfig().ReadyTimeout
	}
	if !ns.ReadyForConnections(wait) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server %s not ready after %s", opts.ServerName, wait)
	}

	s := &EmbeddedServer{ns: ns, name: opts.ServerName, logger: logger}
	s.logger.Info().
		Str("server_name", s.name).
		Str("client_url", ns.ClientURL()).
		Str("store_dir", opts.StoreDir).
		Bool("jetstream", ns.JetStreamEnabled()).
		Msg("Purchase stream server ready")
	return s, nil
}

// ClientURL is where the purchase publisher and subscriber connect.
func (s *EmbeddedServer) ClientURL() string {
	return s.ns.ClientURL()
}

// Serve blocks until ctx is canceled, then drains the server.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := s.Shutdown(context.Background()); err != nil {
		return err
	}
	return ctx.Err()
}

// Shutdown stops the server. It gives up waiting when ctx ends; the
// server keeps shutting down in the background.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	start := time.Now()
	s.ns.Shutdown()

	done := make(chan struct{})
	go func() {
		s.ns.WaitForShutdown()
		close(done)
	}()
	select {
	case <-ctx.Done():
		s.logger.Warn().Str("server_name", s.name).Msg("Purchase stream server shutdown timed out")
		return ctx.Err()
	case <-done:
		s.logger.Info().Str("server_name", s.name).Dur("took", time.Since(start)).Msg("Purchase stream server stopped")
		return nil
	}
}

// IsRunning reports whether the server is accepting connections.
func (s *EmbeddedServer) IsRunning() bool {
	return s.ns.Running()
}

func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.ns.JetStreamEnabled()
}

// String identifies the service in supervisor logs.
func (s *EmbeddedServer) String() string {
	return "nats-embedded:" + s.name
}
