// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}
	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("item_name", []string{"Milk", "Eggs", "Bread"})

	whereClause, args := wb.Build()
	expected := "item_name IN (?, ?, ?)"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 3 || args[0] != "Milk" || args[2] != "Bread" {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestWhereBuilder_AddInEmptyMatchesNothing(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("list_id", nil)

	whereClause, args := wb.Build()
	if whereClause != "1=0" {
		t.Errorf("Expected '1=0', got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_Chained(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	wb := NewWhereBuilder().
		AddNotEqual("user_id", "alice").
		AddEqual("purchased", false).
		AddTimeRange("purchased_at", &start, nil).
		AddIn("item_name", []string{"Milk"})

	whereClause, args := wb.BuildWithPrefix()
	expected := "WHERE user_id <> ? AND purchased = ? AND purchased_at >= ? AND item_name IN (?)"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 4 {
		t.Fatalf("Expected 4 args, got %d", len(args))
	}
	if got, ok := args[2].(time.Time); !ok || !got.Equal(start) {
		t.Errorf("args[2] = %v, want %v", args[2], start)
	}
	if wb.Count() != 4 {
		t.Errorf("Expected count 4, got %d", wb.Count())
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := Placeholders(tt.n); got != tt.want {
			t.Errorf("Placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
