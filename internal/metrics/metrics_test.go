// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "test_table"))

	RecordDBQuery("upsert", "test_table", 5*time.Millisecond, nil)
	RecordDBQuery("upsert", "test_table", 5*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "test_table"))
	if after-before != 1 {
		t.Errorf("DBQueryErrors delta = %v, want 1", after-before)
	}
}

func TestRecordPurchase(t *testing.T) {
	success := testutil.ToFloat64(PurchasesRecorded.WithLabelValues(OutcomeSuccess))
	failure := testutil.ToFloat64(PurchasesRecorded.WithLabelValues(OutcomeFailure))

	RecordPurchase(nil)
	RecordPurchase(nil)
	RecordPurchase(errors.New("store down"))

	if got := testutil.ToFloat64(PurchasesRecorded.WithLabelValues(OutcomeSuccess)) - success; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PurchasesRecorded.WithLabelValues(OutcomeFailure)) - failure; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

func TestRecordRebuild(t *testing.T) {
	skipped := testutil.ToFloat64(RebuildGroups.WithLabelValues(OutcomeSkipped))

	RecordRebuild(time.Second, 4, 3, 0)

	if got := testutil.ToFloat64(RebuildGroups.WithLabelValues(OutcomeSkipped)) - skipped; got != 3 {
		t.Errorf("skipped delta = %v, want 3", got)
	}
	if testutil.ToFloat64(RebuildLastSuccess) == 0 {
		t.Error("RebuildLastSuccess not set after a clean rebuild")
	}
}

func TestRecordNATSMessage(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"success", OutcomeSuccess},
		{"duplicate", OutcomeDuplicate},
		{"invalid payload", OutcomeInvalid},
		{"apply failure", OutcomeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(NATSMessages.WithLabelValues(tt.result))
			RecordNATSMessage(tt.result, time.Millisecond)
			if got := testutil.ToFloat64(NATSMessages.WithLabelValues(tt.result)) - before; got != 1 {
				t.Errorf("NATSMessages[%s] delta = %v, want 1", tt.result, got)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordWALOperation(t *testing.T) {
	before := testutil.ToFloat64(WALOperations.WithLabelValues("write", OutcomeFailure))
	RecordWALOperation("write", errors.New("disk full"))
	if got := testutil.ToFloat64(WALOperations.WithLabelValues("write", OutcomeFailure)) - before; got != 1 {
		t.Errorf("WAL write failures delta = %v, want 1", got)
	}
}
