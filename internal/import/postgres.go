// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package pgimport

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/tillsight/internal/database"
)

// Source reads the three source tables in key order. after is the last row
// of the previous batch, nil for the first batch.
type Source interface {
	Count(ctx context.Context, table string) (int64, error)
	Products(ctx context.Context, after *database.Product, limit int) ([]database.Product, error)
	Orders(ctx context.Context, after *database.Order, limit int) ([]database.Order, error)
	OrderItems(ctx context.Context, after *database.OrderItem, limit int) ([]database.OrderItem, error)
	Close()
}

// Opener connects to a Source for one import run.
type Opener func(ctx context.Context) (Source, error)

// PostgresOpener returns an Opener for dsn.
func PostgresOpener(dsn string) Opener {
	return func(ctx context.Context) (Source, error) {
		return NewPostgresSource(ctx, dsn)
	}
}

// PostgresSource reads through a pgx connection pool.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource opens and pings a pool for dsn.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MinConns = 0
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connection ping failed: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

var countQueries = map[string]string{
	TableProducts:   `SELECT COUNT(*) FROM amazon_products`,
	TableOrders:     `SELECT COUNT(*) FROM amazon_orders`,
	TableOrderItems: `SELECT COUNT(*) FROM amazon_order_items`,
}

// Count returns the number of rows in table.
func (s *PostgresSource) Count(ctx context.Context, table string) (int64, error) {
	query, ok := countQueries[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Products reads products ordered by sku.
func (s *PostgresSource) Products(ctx context.Context, after *database.Product, limit int) ([]database.Product, error) {
	const query = `
		SELECT sku, COALESCE(product_name, ''), COALESCE(category, '')
		FROM amazon_products
		WHERE sku > $1
		ORDER BY sku
		LIMIT $2`

	var last string
	if after != nil {
		last = after.SKU
	}
	rows, err := s.pool.Query(ctx, query, last, limit)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (database.Product, error) {
		var p database.Product
		err := row.Scan(&p.SKU, &p.ProductName, &p.Category)
		return p, err
	})
}

// Orders reads orders ordered by order_id. A NULL date is returned as the
// zero time.
func (s *PostgresSource) Orders(ctx context.Context, after *database.Order, limit int) ([]database.Order, error) {
	const query = `
		SELECT order_id, date::timestamp,
			COALESCE(status, ''), COALESCE(ship_city, ''), COALESCE(ship_state, ''),
			COALESCE(ship_postal_code::text, ''), COALESCE(ship_country, '')
		FROM amazon_orders
		WHERE order_id > $1
		ORDER BY order_id
		LIMIT $2`

	var last string
	if after != nil {
		last = after.OrderID
	}
	rows, err := s.pool.Query(ctx, query, last, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (database.Order, error) {
		var o database.Order
		var date *time.Time
		err := row.Scan(&o.OrderID, &date, &o.Status, &o.ShipCity, &o.ShipState, &o.ShipPostalCode, &o.ShipCountry)
		if date != nil {
			o.Date = *date
		}
		return o, err
	})
}

// OrderItems reads order items ordered by (order_id, sku).
func (s *PostgresSource) OrderItems(ctx context.Context, after *database.OrderItem, limit int) ([]database.OrderItem, error) {
	const query = `
		SELECT order_id, sku, COALESCE(qty, 0)::int, COALESCE(amount, 0)::float8
		FROM amazon_order_items
		WHERE (order_id, sku) > ($1, $2)
		ORDER BY order_id, sku
		LIMIT $3`

	var lastOrder, lastSKU string
	if after != nil {
		lastOrder, lastSKU = after.OrderID, after.SKU
	}
	rows, err := s.pool.Query(ctx, query, lastOrder, lastSKU, limit)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (database.OrderItem, error) {
		var i database.OrderItem
		err := row.Scan(&i.OrderID, &i.SKU, &i.Qty, &i.Amount)
		return i, err
	})
}
