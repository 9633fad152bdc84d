// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// queryBuilder appends AND-ed filters to a base query that already has a
// WHERE clause.
type queryBuilder struct {
	baseQuery string
	args      []any
	filters   []string
}

func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]any, 0, 4),
		filters:   make([]string, 0, 2),
	}
}

// addDateRange filters column to [from, to]; a zero bound is open.
func (qb *queryBuilder) addDateRange(column string, from, to time.Time) *queryBuilder {
	if !from.IsZero() {
		qb.filters = append(qb.filters, column+" >= ?")
		qb.args = append(qb.args, from)
	}
	if !to.IsZero() {
		qb.filters = append(qb.filters, column+" <= ?")
		qb.args = append(qb.args, to)
	}
	return qb
}

// build constructs the final query and returns it with args
func (qb *queryBuilder) build(suffix string) (string, []any) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, qb.args
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []any, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return results, nil
}

// endOfDay extends a date bound to cover the whole day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
