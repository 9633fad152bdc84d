// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package config provides centralized configuration management for Tillsight.

Configuration is layered with koanf. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/tillsight/config.yaml)
 3. Environment variables, mapped explicitly in envTransformFunc

# Configuration Structure

  - DatabaseConfig: DuckDB path, memory limits, demo seeding, query timeout
  - ServerConfig: HTTP bind address, port and timeouts
  - SecurityConfig: rate limiting and CORS
  - AnalyticsConfig: analysis windows, model cache TTL, training schedule
  - ImportConfig: optional PostgreSQL bulk import
  - LoggingConfig: zerolog level, format and caller info

# Environment Variables

Database:
  - DUCKDB_PATH: database file (default: /data/tillsight.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
  - DUCKDB_THREADS: DuckDB worker threads (default: NumCPU)
  - SEED_MOCK_DATA: fill an empty database with demo orders (default: false)
  - DB_QUERY_TIMEOUT: per-query timeout (default: 30s)

HTTP Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:5003), HTTP_TIMEOUT (default: 60s)
  - ENVIRONMENT: development or production

Security:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated origins (default: *)

Analytics:
  - COHORT_START_DATE (default: 2022-01-01)
  - FORECAST_TRAIN_START, FORECAST_TRAIN_END (default: 2022-03-01..2022-06-30)
  - RFM_REFERENCE_DATE: fixed reference date, empty means now
  - SEGMENT_CUSTOMER_LIMIT (default: 1000)
  - MODEL_CACHE_TTL (default: 1h)
  - TRAIN_ON_STARTUP, TRAIN_INTERVAL (default: true, 6h)

Import:
  - IMPORT_ENABLED, IMPORT_POSTGRES_DSN, IMPORT_BATCH_SIZE,
    IMPORT_BATCHES_PER_SECOND, IMPORT_AUTO_START

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Configuration error: %v", err)
	}
*/
package config
