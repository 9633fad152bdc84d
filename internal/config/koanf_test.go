// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path != "/data/tillsight.duckdb" {
		t.Errorf("Database.Path = %q, want /data/tillsight.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}
	if cfg.Database.SeedMockData {
		t.Error("Database.SeedMockData should be false by default")
	}
	if cfg.Database.QueryTimeout != 30*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 30s", cfg.Database.QueryTimeout)
	}

	if cfg.Server.Port != 5003 {
		t.Errorf("Server.Port = %d, want 5003", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}

	if cfg.Security.RateLimitReqs != 100 {
		t.Errorf("Security.RateLimitReqs = %d, want 100", cfg.Security.RateLimitReqs)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}

	if cfg.Analytics.CohortStart != "2022-01-01" {
		t.Errorf("Analytics.CohortStart = %q, want 2022-01-01", cfg.Analytics.CohortStart)
	}
	if cfg.Analytics.SegmentCustomerLimit != 1000 {
		t.Errorf("Analytics.SegmentCustomerLimit = %d, want 1000", cfg.Analytics.SegmentCustomerLimit)
	}
	if !cfg.Analytics.TrainOnStartup {
		t.Error("Analytics.TrainOnStartup should be true by default")
	}

	if cfg.Import.Enabled {
		t.Error("Import.Enabled should be false by default")
	}
	if cfg.Import.BatchSize != 5000 {
		t.Errorf("Import.BatchSize = %d, want 5000", cfg.Import.BatchSize)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

// TestLoadWithKoanf_EnvOverrides verifies environment variables take precedence over defaults
func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("TRAIN_INTERVAL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RFM_REFERENCE_DATE", "2022-07-01")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q, want /tmp/test.duckdb", cfg.Database.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Analytics.TrainInterval != 30*time.Minute {
		t.Errorf("Analytics.TrainInterval = %v, want 30m", cfg.Analytics.TrainInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	ref, ok := cfg.Analytics.ReferenceDate()
	if !ok || ref.Format(DateLayout) != "2022-07-01" {
		t.Errorf("ReferenceDate() = %v, %v; want 2022-07-01, true", ref, ok)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
analytics:
  cohort_start: "2021-06-01"
  segment_customer_limit: 250
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// env still wins over the file
	t.Setenv("SEGMENT_CUSTOMER_LIMIT", "500")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if got := cfg.Analytics.CohortStartDate().Format(DateLayout); got != "2021-06-01" {
		t.Errorf("CohortStartDate() = %s, want 2021-06-01", got)
	}
	if cfg.Analytics.SegmentCustomerLimit != 500 {
		t.Errorf("SegmentCustomerLimit = %d, want 500", cfg.Analytics.SegmentCustomerLimit)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"IMPORT_POSTGRES_DSN", "import.postgres_dsn"},
		{"model_cache_ttl", "analytics.model_cache_ttl"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
