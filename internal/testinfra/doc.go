// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package testinfra provides container-backed infrastructure for integration
// tests.
//
// It uses testcontainers-go to run a real NATS JetStream server so the
// purchase stream, publisher and consumer are tested against the broker
// they run on in production:
//
//	func TestPurchasePipeline(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nats.Container)
//
//	    err = eventprocessor.EnsurePurchaseStream(ctx, nats.URL, &cfg.Stream)
//	    // ...
//	}
//
// All files carry the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Tests skip when Docker is unavailable. The first run pulls the NATS image.
package testinfra
