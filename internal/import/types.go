// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package pgimport

import (
	"time"
)

// Source tables, in copy order.
const (
	TableProducts   = "amazon_products"
	TableOrders     = "amazon_orders"
	TableOrderItems = "amazon_order_items"
)

// ImportStats holds statistics about an import operation.
type ImportStats struct {
	// TotalRecords is the row count of all source tables.
	TotalRecords int64

	// Processed is the number of rows read (including skipped).
	Processed int64

	// Imported is the number of rows newly written to DuckDB.
	Imported int64

	// Skipped counts rows missing a key or already present.
	Skipped int64

	// Errors is the number of rows whose batch failed to write.
	Errors int64

	// CurrentTable is the table being copied.
	CurrentTable string

	StartTime time.Time
	EndTime   time.Time

	// DryRun reads and validates without writing.
	DryRun bool

	// LastError is the error that ended the run, if any.
	LastError string
}

// Duration returns the duration of the import operation.
func (s *ImportStats) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Progress returns the import progress as a percentage (0-100).
func (s *ImportStats) Progress() float64 {
	if s.TotalRecords == 0 {
		return 0
	}
	return min(float64(s.Processed)/float64(s.TotalRecords)*100, 100)
}

// RecordsPerSecond returns the import rate.
func (s *ImportStats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Processed) / duration
}

// ProgressSummary is the JSON view of an import run.
type ProgressSummary struct {
	Status          string    `json:"status"`
	Progress        float64   `json:"progress"`
	TotalRecords    int64     `json:"total_records"`
	Processed       int64     `json:"processed"`
	Imported        int64     `json:"imported"`
	Skipped         int64     `json:"skipped"`
	Errors          int64     `json:"errors"`
	CurrentTable    string    `json:"current_table,omitempty"`
	RecordsPerSec   float64   `json:"records_per_second"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	EstimatedRemain float64   `json:"estimated_remaining_seconds"`
	StartTime       time.Time `json:"start_time"`
	DryRun          bool      `json:"dry_run"`
	LastError       string    `json:"last_error,omitempty"`
}

// ToSummary converts ImportStats to a ProgressSummary with calculated fields.
func (s *ImportStats) ToSummary(running bool) *ProgressSummary {
	summary := &ProgressSummary{
		Progress:       s.Progress(),
		TotalRecords:   s.TotalRecords,
		Processed:      s.Processed,
		Imported:       s.Imported,
		Skipped:        s.Skipped,
		Errors:         s.Errors,
		CurrentTable:   s.CurrentTable,
		RecordsPerSec:  s.RecordsPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
		StartTime:      s.StartTime,
		DryRun:         s.DryRun,
		LastError:      s.LastError,
	}

	switch {
	case running:
		summary.Status = "running"
	case s.StartTime.IsZero():
		summary.Status = "idle"
	case s.LastError != "":
		summary.Status = "failed"
	default:
		summary.Status = "completed"
	}

	if running && summary.RecordsPerSec > 0 {
		remaining := s.TotalRecords - s.Processed
		summary.EstimatedRemain = float64(max(remaining, 0)) / summary.RecordsPerSec
	}

	return summary
}
