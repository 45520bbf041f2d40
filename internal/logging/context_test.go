// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateIDs(t *testing.T) {
	if got := GenerateCorrelationID(); len(got) != 8 {
		t.Errorf("GenerateCorrelationID() length = %d, want 8", len(got))
	}
	a, b := GenerateRequestID(), GenerateRequestID()
	if len(a) != 36 || a == b {
		t.Errorf("GenerateRequestID() = %q, %q, want distinct UUIDs", a, b)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || UserIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithUserID(ctx, "alice")

	if got := CorrelationIDFromContext(ctx); got != "corr1234" {
		t.Errorf("CorrelationIDFromContext() = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
	if got := UserIDFromContext(ctx); got != "alice" {
		t.Errorf("UserIDFromContext() = %q", got)
	}

	if got := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background())); len(got) != 8 {
		t.Errorf("ContextWithNewCorrelationID() id = %q", got)
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-9")
	ctx = ContextWithUserID(ctx, "bob")

	Ctx(ctx).Info().Msg("handled")
	CtxErr(ctx, errors.New("nope")).Msg("failed")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-9"`, `"user_id":"bob"`, `"message":"handled"`, `"error":"nope"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "correlation_id") {
		t.Errorf("unset correlation id should be omitted: %s", out)
	}
}

func TestLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	buf := captureGlobal(t)

	l := LoggerFromContext(context.Background())
	l.Info().Msg("global")

	if !strings.Contains(buf.String(), "global") {
		t.Errorf("expected global logger output, got %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := WithComponent("rebuild")
	l.Info().Msg("started")

	if !strings.Contains(buf.String(), `"component":"rebuild"`) {
		t.Errorf("missing component field: %s", buf.String())
	}
}
