// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "zero threads",
			mutate:  func(c *Config) { c.Database.Threads = 0 },
			wantErr: "DUCKDB_THREADS",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Security.RateLimitReqs = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name: "zero rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitReqs = 0
				c.Security.RateLimitDisabled = true
			},
		},
		{
			name:    "bad cohort date",
			mutate:  func(c *Config) { c.Analytics.CohortStart = "01/01/2022" },
			wantErr: "COHORT_START_DATE",
		},
		{
			name: "forecast window reversed",
			mutate: func(c *Config) {
				c.Analytics.ForecastTrainStart = "2022-07-01"
				c.Analytics.ForecastTrainEnd = "2022-03-01"
			},
			wantErr: "FORECAST_TRAIN_START must be before",
		},
		{
			name:    "bad reference date",
			mutate:  func(c *Config) { c.Analytics.RFMReferenceDate = "yesterday" },
			wantErr: "RFM_REFERENCE_DATE",
		},
		{
			name:    "segment limit too small",
			mutate:  func(c *Config) { c.Analytics.SegmentCustomerLimit = 3 },
			wantErr: "SEGMENT_CUSTOMER_LIMIT",
		},
		{
			name:    "import without dsn",
			mutate:  func(c *Config) { c.Import.Enabled = true },
			wantErr: "IMPORT_POSTGRES_DSN",
		},
		{
			name: "import batch size",
			mutate: func(c *Config) {
				c.Import.Enabled = true
				c.Import.PostgresDSN = "postgres://localhost/shop"
				c.Import.BatchSize = 0
			},
			wantErr: "IMPORT_BATCH_SIZE",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5003}
	if got := s.Addr(); got != "127.0.0.1:5003" {
		t.Errorf("Addr() = %q, want 127.0.0.1:5003", got)
	}
}
