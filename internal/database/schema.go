// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"fmt"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS amazon_products (
		sku          VARCHAR PRIMARY KEY,
		product_name VARCHAR,
		category     VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_orders (
		order_id         VARCHAR PRIMARY KEY,
		date             TIMESTAMP NOT NULL,
		status           VARCHAR,
		ship_city        VARCHAR,
		ship_state       VARCHAR,
		ship_postal_code VARCHAR,
		ship_country     VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_order_items (
		order_id VARCHAR NOT NULL,
		sku      VARCHAR NOT NULL,
		qty      INTEGER NOT NULL DEFAULT 0,
		amount   DOUBLE,
		PRIMARY KEY (order_id, sku)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON amazon_orders(date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_postal ON amazon_orders(ship_postal_code)`,
	`CREATE INDEX IF NOT EXISTS idx_items_sku ON amazon_order_items(sku)`,
}

// initialize creates tables and indexes that do not exist yet.
func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// TableCounts returns row counts for the three tables.
func (db *DB) TableCounts(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	counts := make(map[string]int64, 3)
	for _, table := range []string{"amazon_products", "amazon_orders", "amazon_order_items"} {
		var n int64
		// table comes from the fixed list above
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
