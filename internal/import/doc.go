// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package pgimport copies order data from a PostgreSQL database into the
DuckDB store.

The source must expose amazon_products, amazon_orders and
amazon_order_items with the DuckDB column names. Tables are copied in that
order so that order items always land after their orders.

# Batching

Each table is read in keyset-paged batches (products by sku, orders by
order_id, items by (order_id, sku)) of ImportConfig.BatchSize rows. A
token-bucket limiter from golang.org/x/time/rate caps the number of batches
per second so a large import does not starve dashboard queries.

Rows missing a key field are skipped and counted. Rows whose key already
exists in DuckDB are skipped by the store and also counted as skipped, so
re-running an import is safe.

# Usage

	imp := pgimport.NewImporter(&cfg.Import, pgimport.PostgresOpener(cfg.Import.PostgresDSN), db)
	stats, err := imp.Import(ctx)

Progress is available while running via GetStats and ToSummary.
*/
package pgimport
