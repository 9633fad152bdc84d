// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

// Package database is the DuckDB store behind Tillsight.
//
// # Schema
//
// Three tables hold the marketplace export:
//   - amazon_products: sku, product_name, category
//   - amazon_orders: order_id, date, status and shipping geography
//   - amazon_order_items: order_id, sku, qty, amount
//
// Customers are identified by amazon_orders.ship_postal_code.
//
// # Files
//
//   - database.go: connection lifecycle and pool configuration
//   - schema.go: table and index creation
//   - breaker.go: circuit breaker and metrics around every query
//   - analysis.go: row sets feeding the analytics engines
//   - stats.go: dashboard aggregates (overall stats, products, trends, geography)
//   - insert.go: batched idempotent writes used by the importer and the seeder
//   - seed.go: deterministic demo data
//
// # Resilience
//
// Every read goes through a gobreaker circuit breaker named "duckdb". When
// the store keeps failing the breaker opens and queries fail fast with
// gobreaker.ErrOpenState until the timeout elapses. Query durations and
// error classes are exported through internal/metrics.
//
// # Testing
//
// Tests use an in-memory database (":memory:"). DuckDB's CGO layer does not
// tolerate many parallel instances well, so setupTestDB serializes them with
// a semaphore.
package database
