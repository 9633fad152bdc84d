// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/tillsight/internal/analytics"
)

// OrderLines returns one row per order item attributed to a postal code,
// optionally bounded to orders dated within [from, to]. A zero bound is
// open; to covers its whole day.
func (db *DB) OrderLines(ctx context.Context, from, to time.Time) ([]analytics.OrderLine, error) {
	qb := newQueryBuilder(`
		SELECT ao.ship_postal_code, ao.date, COALESCE(aoi.amount, 0)
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		WHERE ao.ship_postal_code IS NOT NULL`).
		addDateRange("ao.date", from, endOfDay(to))
	query, args := qb.build("ORDER BY ao.ship_postal_code, ao.date")

	return run(ctx, db, "order_lines", func(ctx context.Context) ([]analytics.OrderLine, error) {
		return queryAndScan(ctx, db.conn, query, args, func(rows *sql.Rows) (analytics.OrderLine, error) {
			var l analytics.OrderLine
			err := rows.Scan(&l.CustomerID, &l.OrderDate, &l.Amount)
			return l, err
		})
	})
}

// BasketLines returns (order, product) pairs for every named product.
func (db *DB) BasketLines(ctx context.Context) ([]analytics.BasketLine, error) {
	const query = `
		SELECT aoi.order_id, ap.product_name
		FROM amazon_order_items aoi
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE ap.product_name IS NOT NULL
		ORDER BY aoi.order_id, ap.product_name`

	return run(ctx, db, "basket_lines", func(ctx context.Context) ([]analytics.BasketLine, error) {
		return queryAndScan(ctx, db.conn, query, nil, func(rows *sql.Rows) (analytics.BasketLine, error) {
			var l analytics.BasketLine
			err := rows.Scan(&l.OrderID, &l.Product)
			return l, err
		})
	})
}

// CustomerFeatures aggregates per-postal-code behavior for segmentation.
// Customers are taken in postal code order, at most limit of them.
func (db *DB) CustomerFeatures(ctx context.Context, limit int) ([]analytics.CustomerFeatures, error) {
	const query = `
		SELECT
			ao.ship_postal_code,
			COUNT(DISTINCT ao.order_id),
			CAST(COALESCE(SUM(aoi.qty), 0) AS BIGINT),
			COALESCE(AVG(aoi.amount), 0),
			COALESCE(SUM(aoi.amount), 0),
			COUNT(DISTINCT ap.category),
			date_diff('day', MIN(ao.date), MAX(ao.date))
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE ao.ship_postal_code IS NOT NULL
		GROUP BY ao.ship_postal_code
		HAVING COUNT(DISTINCT ao.order_id) >= 1
		ORDER BY ao.ship_postal_code
		LIMIT ?`

	return run(ctx, db, "customer_features", func(ctx context.Context) ([]analytics.CustomerFeatures, error) {
		return queryAndScan(ctx, db.conn, query, []any{limit}, func(rows *sql.Rows) (analytics.CustomerFeatures, error) {
			var c analytics.CustomerFeatures
			var lifespan int64
			err := rows.Scan(&c.CustomerID, &c.TotalOrders, &c.TotalQuantity,
				&c.AvgOrderValue, &c.TotalSpent, &c.CategoriesPurchased, &lifespan)
			c.LifespanDays = float64(lifespan)
			return c, err
		})
	})
}

// DailySales aggregates orders per calendar day within [from, to].
func (db *DB) DailySales(ctx context.Context, from, to time.Time) ([]analytics.DailySales, error) {
	qb := newQueryBuilder(`
		SELECT
			CAST(ao.date AS DATE) AS sale_date,
			COUNT(DISTINCT ao.order_id),
			CAST(COALESCE(SUM(aoi.qty), 0) AS BIGINT),
			COALESCE(SUM(aoi.amount), 0),
			COALESCE(AVG(aoi.amount), 0),
			COUNT(DISTINCT ap.category)
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE 1 = 1`).
		addDateRange("ao.date", from, endOfDay(to))
	query, args := qb.build("GROUP BY sale_date ORDER BY sale_date")

	return run(ctx, db, "daily_sales", func(ctx context.Context) ([]analytics.DailySales, error) {
		return queryAndScan(ctx, db.conn, query, args, func(rows *sql.Rows) (analytics.DailySales, error) {
			var d analytics.DailySales
			err := rows.Scan(&d.Date, &d.Orders, &d.Quantity, &d.Revenue, &d.AvgOrderValue, &d.CategoriesSold)
			return d, err
		})
	})
}

// CustomerProducts lists the distinct products bought from one postal code.
func (db *DB) CustomerProducts(ctx context.Context, customerID string) ([]string, error) {
	const query = `
		SELECT DISTINCT ap.product_name
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE ao.ship_postal_code = ?
		AND ap.product_name IS NOT NULL
		ORDER BY ap.product_name`

	return run(ctx, db, "customer_products", func(ctx context.Context) ([]string, error) {
		return queryAndScan(ctx, db.conn, query, []any{customerID}, func(rows *sql.Rows) (string, error) {
			var p string
			err := rows.Scan(&p)
			return p, err
		})
	})
}
