// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package config

import (
	"fmt"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateAnalytics(); err != nil {
		return err
	}

	if err := c.validateImport(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("DUCKDB_THREADS must be at least 1")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateRateLimits is skipped entirely when rate limiting is disabled.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	a := c.Analytics

	if _, err := time.Parse(DateLayout, a.CohortStart); err != nil {
		return fmt.Errorf("COHORT_START_DATE must be a YYYY-MM-DD date: %w", err)
	}

	start, err := time.Parse(DateLayout, a.ForecastTrainStart)
	if err != nil {
		return fmt.Errorf("FORECAST_TRAIN_START must be a YYYY-MM-DD date: %w", err)
	}
	end, err := time.Parse(DateLayout, a.ForecastTrainEnd)
	if err != nil {
		return fmt.Errorf("FORECAST_TRAIN_END must be a YYYY-MM-DD date: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("FORECAST_TRAIN_START must be before FORECAST_TRAIN_END")
	}

	if a.RFMReferenceDate != "" {
		if _, err := time.Parse(DateLayout, a.RFMReferenceDate); err != nil {
			return fmt.Errorf("RFM_REFERENCE_DATE must be a YYYY-MM-DD date: %w", err)
		}
	}

	if a.SegmentCustomerLimit < 4 {
		return fmt.Errorf("SEGMENT_CUSTOMER_LIMIT must be at least 4")
	}
	if a.ModelCacheTTL <= 0 {
		return fmt.Errorf("MODEL_CACHE_TTL must be positive")
	}
	if a.TrainInterval <= 0 {
		return fmt.Errorf("TRAIN_INTERVAL must be positive")
	}
	return nil
}

// validateImport only applies when the importer is enabled.
func (c *Config) validateImport() error {
	if !c.Import.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Import.PostgresDSN) == "" {
		return fmt.Errorf("IMPORT_POSTGRES_DSN is required when IMPORT_ENABLED=true")
	}
	if c.Import.BatchSize < 1 || c.Import.BatchSize > 100000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 100000")
	}
	if c.Import.BatchesPerSecond <= 0 {
		return fmt.Errorf("IMPORT_BATCHES_PER_SECOND must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
