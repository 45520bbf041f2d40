// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// maxConflictRetries bounds retries of a write after a DuckDB transaction conflict
const maxConflictRetries = 3

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, logger *slog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		if logger != nil {
			logger.Error("failed to close resource",
				"type", resourceType,
				"error", err)
		} else {
			logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
		}
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// withConflictRetry runs fn, retrying transaction conflicts with
// exponential backoff (1ms, 2ms). Other errors are returned immediately.
func withConflictRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}

		if !isTransactionConflict(err) {
			return err
		}

		metrics.DBTransactionRetries.WithLabelValues(operation).Inc()

		if attempt < maxConflictRetries-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// observe records the duration and outcome of a query
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
