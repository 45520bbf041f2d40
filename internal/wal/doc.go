// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package wal provides a BadgerDB-backed write-ahead journal for the
// purchase ingest path.
//
// A purchase accepted from HTTP or NATS is journaled before it is applied
// to the recommendation engine and confirmed afterwards:
//
//	Write (fsync) -> engine.ApplyPurchase -> Confirm
//	                        | (on failure)
//	                 entry stays pending, replayed later
//
// # Components
//
//   - BadgerWAL: the journal (pending:<id> and confirmed:<id> keys)
//   - RecoverPending: one replay pass at startup
//   - RetryLoop: suture service replaying pending entries with exponential backoff
//   - Compactor: suture service deleting confirmed entries and running value-log GC
//
// Entries older than EntryTTL or with MaxRetries failed attempts are dropped.
//
// # Usage
//
//	w, err := wal.Open(wal.FromSettings(&cfg.WAL))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	result, err := w.RecoverPending(ctx, replayer)
package wal
