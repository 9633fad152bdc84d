// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package config

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for every date-valued setting.
const DateLayout = "2006-01-02"

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Import    ImportConfig    `koanf:"import"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"`
	Threads                int           `koanf:"threads"`
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	SeedMockData           bool          `koanf:"seed_mock_data"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds rate limiting and CORS settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AnalyticsConfig controls analysis windows and the model lifecycle.
//
// Dates are kept as strings so they round-trip through env vars and YAML
// unchanged; use the accessor methods for parsed values.
type AnalyticsConfig struct {
	CohortStart          string        `koanf:"cohort_start"`
	ForecastTrainStart   string        `koanf:"forecast_train_start"`
	ForecastTrainEnd     string        `koanf:"forecast_train_end"`
	RFMReferenceDate     string        `koanf:"rfm_reference_date"`
	SegmentCustomerLimit int           `koanf:"segment_customer_limit"`
	ModelCacheTTL        time.Duration `koanf:"model_cache_ttl"`
	TrainOnStartup       bool          `koanf:"train_on_startup"`
	TrainInterval        time.Duration `koanf:"train_interval"`
}

// CohortStartDate returns the parsed cohort start boundary.
func (a AnalyticsConfig) CohortStartDate() time.Time {
	return mustDate(a.CohortStart)
}

// ForecastWindow returns the parsed forecast training window.
func (a AnalyticsConfig) ForecastWindow() (start, end time.Time) {
	return mustDate(a.ForecastTrainStart), mustDate(a.ForecastTrainEnd)
}

// ReferenceDate returns the fixed RFM reference date, or ok=false when the
// analysis should use the current time.
func (a AnalyticsConfig) ReferenceDate() (ref time.Time, ok bool) {
	if a.RFMReferenceDate == "" {
		return time.Time{}, false
	}
	return mustDate(a.RFMReferenceDate), true
}

// ImportConfig holds PostgreSQL bulk import settings.
//
// The source database must expose amazon_products, amazon_orders and
// amazon_order_items with the same column names as the DuckDB schema.
type ImportConfig struct {
	Enabled          bool    `koanf:"enabled"`
	PostgresDSN      string  `koanf:"postgres_dsn"`
	BatchSize        int     `koanf:"batch_size"`
	BatchesPerSecond float64 `koanf:"batches_per_second"`
	AutoStart        bool    `koanf:"auto_start"`
	DryRun           bool    `koanf:"dry_run"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// mustDate parses a date that Validate has already checked.
func mustDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
