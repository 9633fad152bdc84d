// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tillsight/internal/logging"
)

// Product is a row of amazon_products.
type Product struct {
	SKU         string
	ProductName string
	Category    string
}

// Order is a row of amazon_orders. Empty strings are stored as NULL.
type Order struct {
	OrderID        string
	Date           time.Time
	Status         string
	ShipCity       string
	ShipState      string
	ShipPostalCode string
	ShipCountry    string
}

// OrderItem is a row of amazon_order_items.
type OrderItem struct {
	OrderID string
	SKU     string
	Qty     int
	Amount  float64
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertProducts writes products, skipping SKUs that already exist.
// It returns how many rows were new.
func (db *DB) InsertProducts(ctx context.Context, products []Product) (int, error) {
	return insertBatch(ctx, db, "insert_products",
		`INSERT INTO amazon_products (sku, product_name, category) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		products, func(p Product) []any {
			return []any{p.SKU, nullable(p.ProductName), nullable(p.Category)}
		})
}

// InsertOrders writes orders, skipping order IDs that already exist.
func (db *DB) InsertOrders(ctx context.Context, orders []Order) (int, error) {
	return insertBatch(ctx, db, "insert_orders",
		`INSERT INTO amazon_orders (order_id, date, status, ship_city, ship_state, ship_postal_code, ship_country)
		VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		orders, func(o Order) []any {
			return []any{o.OrderID, o.Date, nullable(o.Status), nullable(o.ShipCity),
				nullable(o.ShipState), nullable(o.ShipPostalCode), nullable(o.ShipCountry)}
		})
}

// InsertOrderItems writes order items, skipping (order, sku) pairs that
// already exist.
func (db *DB) InsertOrderItems(ctx context.Context, items []OrderItem) (int, error) {
	return insertBatch(ctx, db, "insert_order_items",
		`INSERT INTO amazon_order_items (order_id, sku, qty, amount) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		items, func(i OrderItem) []any {
			return []any{i.OrderID, i.SKU, i.Qty, i.Amount}
		})
}

// insertBatch runs one prepared statement per row inside a transaction and
// counts affected rows. Conflicting rows affect none.
func insertBatch[T any](ctx context.Context, db *DB, name, query string, rows []T, args func(T) []any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return run(ctx, db, name, func(ctx context.Context) (inserted int, err error) {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
				}
			}
		}()

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer closeQuietly(stmt)

		for _, row := range rows {
			res, execErr := stmt.ExecContext(ctx, args(row)...)
			if execErr != nil {
				return 0, fmt.Errorf("failed to insert row: %w", execErr)
			}
			if n, raErr := res.RowsAffected(); raErr == nil {
				inserted += int(n)
			}
		}

		if err = tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return inserted, nil
	})
}
