// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddNotEqual("user_id", "alice")
//	wb.AddIn("item_name", []string{"Milk", "Eggs"})
//	whereClause, args := wb.Build()
//	// user_id <> ? AND item_name IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEqual adds "column = ?".
func (wb *WhereBuilder) AddEqual(column string, value interface{}) *WhereBuilder {
	return wb.AddClause(column+" = ?", value)
}

// AddNotEqual adds "column <> ?".
func (wb *WhereBuilder) AddNotEqual(column string, value interface{}) *WhereBuilder {
	return wb.AddClause(column+" <> ?", value)
}

// AddIn adds "column IN (?, ?, ...)". An empty values slice adds a clause
// that matches nothing, so callers never widen a query by accident.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, Placeholders(len(values))))
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// AddTimeRange adds start and/or end filters on column. Nil bounds are skipped.
func (wb *WhereBuilder) AddTimeRange(column string, start, end *time.Time) *WhereBuilder {
	if start != nil {
		wb.AddClause(column+" >= ?", start.UTC())
	}
	if end != nil {
		wb.AddClause(column+" <= ?", end.UTC())
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Placeholders returns n comma-separated "?" markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
