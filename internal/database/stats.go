// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Limits for TopProducts.
const (
	DefaultTopProducts = 20
	MaxTopProducts     = 1000
	geographyLimit     = 50
)

// DateRange is the span of order dates.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// OverallStats are the headline dashboard numbers.
type OverallStats struct {
	TotalOrders    int64      `json:"total_orders"`
	TotalRevenue   float64    `json:"total_revenue"`
	TotalProducts  int64      `json:"total_products"`
	TotalCustomers int64      `json:"total_customers"`
	AvgOrderValue  float64    `json:"avg_order_value"`
	DateRange      *DateRange `json:"date_range,omitempty"`
}

// OverallStats computes store-wide totals. AvgOrderValue is the mean of
// per-order sums.
func (db *DB) OverallStats(ctx context.Context) (*OverallStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM amazon_orders),
			(SELECT COALESCE(SUM(amount), 0) FROM amazon_order_items),
			(SELECT COUNT(*) FROM amazon_products),
			(SELECT COUNT(DISTINCT ship_postal_code) FROM amazon_orders),
			(SELECT COALESCE(AVG(order_total), 0) FROM (
				SELECT SUM(amount) AS order_total FROM amazon_order_items GROUP BY order_id
			)),
			(SELECT MIN(date) FROM amazon_orders),
			(SELECT MAX(date) FROM amazon_orders)`

	return run(ctx, db, "overall_stats", func(ctx context.Context) (*OverallStats, error) {
		var s OverallStats
		var first, last sql.NullTime
		err := db.conn.QueryRowContext(ctx, query).Scan(
			&s.TotalOrders, &s.TotalRevenue, &s.TotalProducts, &s.TotalCustomers,
			&s.AvgOrderValue, &first, &last)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if first.Valid && last.Valid {
			s.DateRange = &DateRange{
				StartDate: first.Time.Format(time.DateOnly),
				EndDate:   last.Time.Format(time.DateOnly),
			}
		}
		return &s, nil
	})
}

// TopProduct is one product's sales.
type TopProduct struct {
	ProductName   string  `json:"product_name"`
	Category      string  `json:"category"`
	OrderCount    int64   `json:"order_count"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgPrice      float64 `json:"avg_price"`
}

// ClampTopProducts coerces a requested product limit into 1..MaxTopProducts,
// using DefaultTopProducts for anything non-positive.
func ClampTopProducts(limit int) int {
	switch {
	case limit <= 0:
		return DefaultTopProducts
	case limit > MaxTopProducts:
		return MaxTopProducts
	default:
		return limit
	}
}

// TopProducts ranks products by revenue.
func (db *DB) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	const query = `
		SELECT
			ap.product_name,
			COALESCE(ap.category, ''),
			COUNT(DISTINCT aoi.order_id),
			CAST(COALESCE(SUM(aoi.qty), 0) AS BIGINT),
			COALESCE(SUM(aoi.amount), 0) AS total_revenue,
			COALESCE(AVG(aoi.amount), 0)
		FROM amazon_order_items aoi
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE ap.product_name IS NOT NULL
		GROUP BY ap.product_name, ap.category
		ORDER BY total_revenue DESC, ap.product_name
		LIMIT ?`

	return run(ctx, db, "top_products", func(ctx context.Context) ([]TopProduct, error) {
		return queryAndScan(ctx, db.conn, query, []any{ClampTopProducts(limit)}, func(rows *sql.Rows) (TopProduct, error) {
			var p TopProduct
			err := rows.Scan(&p.ProductName, &p.Category, &p.OrderCount, &p.TotalQuantity, &p.TotalRevenue, &p.AvgPrice)
			return p, err
		})
	})
}

// SalesTrend is one month of sales.
type SalesTrend struct {
	Month         string  `json:"month"`
	Orders        int64   `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// SalesTrends aggregates sales per calendar month.
func (db *DB) SalesTrends(ctx context.Context) ([]SalesTrend, error) {
	const query = `
		SELECT
			strftime(date_trunc('month', ao.date), '%Y-%m') AS month,
			COUNT(DISTINCT ao.order_id),
			COALESCE(SUM(aoi.amount), 0),
			COALESCE(AVG(aoi.amount), 0)
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		GROUP BY month
		ORDER BY month`

	return run(ctx, db, "sales_trends", func(ctx context.Context) ([]SalesTrend, error) {
		return queryAndScan(ctx, db.conn, query, nil, func(rows *sql.Rows) (SalesTrend, error) {
			var t SalesTrend
			err := rows.Scan(&t.Month, &t.Orders, &t.Revenue, &t.AvgOrderValue)
			return t, err
		})
	})
}

// CategoryPerformance is one category's sales.
type CategoryPerformance struct {
	Category string  `json:"category"`
	Orders   int64   `json:"orders"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	AvgPrice float64 `json:"avg_price"`
}

// CategoryPerformance ranks categories by revenue.
func (db *DB) CategoryPerformance(ctx context.Context) ([]CategoryPerformance, error) {
	const query = `
		SELECT
			ap.category,
			COUNT(DISTINCT aoi.order_id),
			CAST(COALESCE(SUM(aoi.qty), 0) AS BIGINT),
			COALESCE(SUM(aoi.amount), 0) AS revenue,
			COALESCE(AVG(aoi.amount), 0)
		FROM amazon_order_items aoi
		JOIN amazon_products ap ON aoi.sku = ap.sku
		WHERE ap.category IS NOT NULL
		GROUP BY ap.category
		ORDER BY revenue DESC, ap.category`

	return run(ctx, db, "category_performance", func(ctx context.Context) ([]CategoryPerformance, error) {
		return queryAndScan(ctx, db.conn, query, nil, func(rows *sql.Rows) (CategoryPerformance, error) {
			var c CategoryPerformance
			err := rows.Scan(&c.Category, &c.Orders, &c.Quantity, &c.Revenue, &c.AvgPrice)
			return c, err
		})
	})
}

// RegionSales is one shipping state's sales.
type RegionSales struct {
	ShipState   string  `json:"ship_state"`
	ShipCountry string  `json:"ship_country"`
	Orders      int64   `json:"orders"`
	Revenue     float64 `json:"revenue"`
}

// GeographicDistribution returns the 50 highest-revenue shipping states.
func (db *DB) GeographicDistribution(ctx context.Context) ([]RegionSales, error) {
	const query = `
		SELECT
			ao.ship_state,
			COALESCE(ao.ship_country, ''),
			COUNT(DISTINCT ao.order_id),
			COALESCE(SUM(aoi.amount), 0) AS revenue
		FROM amazon_orders ao
		JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
		WHERE ao.ship_state IS NOT NULL
		GROUP BY ao.ship_state, ao.ship_country
		ORDER BY revenue DESC, ao.ship_state
		LIMIT ?`

	return run(ctx, db, "geographic_distribution", func(ctx context.Context) ([]RegionSales, error) {
		return queryAndScan(ctx, db.conn, query, []any{geographyLimit}, func(rows *sql.Rows) (RegionSales, error) {
			var r RegionSales
			err := rows.Scan(&r.ShipState, &r.ShipCountry, &r.Orders, &r.Revenue)
			return r, err
		})
	})
}

// CustomerMetrics describes the customer base.
type CustomerMetrics struct {
	UniqueCustomers      int64   `json:"unique_customers"`
	AvgOrdersPerCustomer float64 `json:"avg_orders_per_customer"`
	AvgCustomerValue     float64 `json:"avg_customer_value"`
}

// CustomerMetrics averages order count and spend over postal codes.
func (db *DB) CustomerMetrics(ctx context.Context) (*CustomerMetrics, error) {
	const query = `
		SELECT
			COUNT(*),
			COALESCE(AVG(order_count), 0),
			COALESCE(AVG(total_spent), 0)
		FROM (
			SELECT
				ao.ship_postal_code,
				COUNT(DISTINCT ao.order_id) AS order_count,
				COALESCE(SUM(aoi.amount), 0) AS total_spent
			FROM amazon_orders ao
			JOIN amazon_order_items aoi ON ao.order_id = aoi.order_id
			WHERE ao.ship_postal_code IS NOT NULL
			GROUP BY ao.ship_postal_code
		)`

	return run(ctx, db, "customer_metrics", func(ctx context.Context) (*CustomerMetrics, error) {
		var m CustomerMetrics
		if err := db.conn.QueryRowContext(ctx, query).Scan(&m.UniqueCustomers, &m.AvgOrdersPerCustomer, &m.AvgCustomerValue); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		return &m, nil
	})
}
