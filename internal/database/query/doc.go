// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package query provides SQL query building utilities for the database package.
//
// The WhereBuilder provides a fluent interface for parameterized WHERE clauses:
//
//	wb := query.NewWhereBuilder()
//	wb.AddNotEqual("user_id", target)
//	wb.AddIn("item_name", names)
//	whereClause, args := wb.Build()
//	rows, err := conn.QueryContext(ctx,
//	    "SELECT DISTINCT user_id FROM recommendations WHERE "+whereClause, args...)
//
// Values are always bound as arguments. Column names are trusted input and
// must come from constants in the calling package.
package query
