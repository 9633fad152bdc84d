// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

// Package main is the entry point for the Tillsight server.
//
// Tillsight serves e-commerce business intelligence over a JSON HTTP API:
// RFM scoring, cohort retention, market-basket rules, customer
// segmentation and sales forecasting over orders stored in DuckDB.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (koanf v2)
//  2. Logging: zerolog, level and format from LOG_LEVEL / LOG_FORMAT
//  3. Database: DuckDB at DUCKDB_PATH, schema created if missing
//  4. Demo data: SEED_MOCK_DATA=true fills an empty database
//  5. Supervisor tree: PostgreSQL import (optional), model trainer, HTTP server
//
// # Signals
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
// up to 10 seconds, a running import is stopped, and DuckDB is closed.
//
// # Example
//
//	export DUCKDB_PATH=./tillsight.duckdb
//	export SEED_MOCK_DATA=true
//	export RFM_REFERENCE_DATE=2022-07-01
//	./tillsight
//	curl localhost:5003/api/rfm-analysis
package main
