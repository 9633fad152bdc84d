// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package pgimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tillsight/internal/config"
	"github.com/tomtom215/tillsight/internal/database"
	"github.com/tomtom215/tillsight/internal/logging"
	"github.com/tomtom215/tillsight/internal/metrics"
)

// Import lifecycle errors.
var (
	ErrAlreadyRunning = errors.New("import already in progress")
	ErrNotRunning     = errors.New("no import in progress")
	ErrCanceled       = errors.New("import canceled")
)

const defaultBatchSize = 5000

// Sink receives imported rows. *database.DB satisfies it.
type Sink interface {
	InsertProducts(ctx context.Context, products []database.Product) (int, error)
	InsertOrders(ctx context.Context, orders []database.Order) (int, error)
	InsertOrderItems(ctx context.Context, items []database.OrderItem) (int, error)
}

// Importer copies the source tables into DuckDB.
type Importer struct {
	cfg  *config.ImportConfig
	open Opener
	sink Sink

	// State
	mu       sync.RWMutex
	running  bool
	stats    *ImportStats
	stopChan chan struct{}
}

// NewImporter creates an importer reading through open and writing to sink.
func NewImporter(cfg *config.ImportConfig, open Opener, sink Sink) *Importer {
	return &Importer{
		cfg:      cfg,
		open:     open,
		sink:     sink,
		stopChan: make(chan struct{}),
	}
}

// Import runs one full copy. It blocks until the copy finishes, fails, is
// stopped or ctx is done.
func (i *Importer) Import(ctx context.Context) (stats *ImportStats, err error) {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	i.running = true
	i.stats = &ImportStats{
		StartTime: time.Now(),
		DryRun:    i.cfg.DryRun,
	}
	stop := i.stopChan
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.stats.EndTime = time.Now()
		i.stats.CurrentTable = ""
		if err != nil {
			i.stats.LastError = err.Error()
		}
		i.mu.Unlock()
	}()

	source, err := i.open(ctx)
	if err != nil {
		return i.GetStats(), fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	var total int64
	for _, table := range []string{TableProducts, TableOrders, TableOrderItems} {
		n, err := source.Count(ctx, table)
		if err != nil {
			return i.GetStats(), err
		}
		logging.Info().Str("table", table).Int64("rows", n).Msg("Source table size")
		total += n
	}
	i.mu.Lock()
	i.stats.TotalRecords = total
	i.mu.Unlock()

	logging.Info().
		Int64("total_records", total).
		Int("batch_size", i.batchSize()).
		Bool("dry_run", i.cfg.DryRun).
		Msg("Starting import")

	r := &run{importer: i, source: source, stop: stop, limiter: i.newLimiter()}
	if err := r.copyAll(ctx); err != nil {
		return i.GetStats(), err
	}

	final := i.GetStats()
	logging.Info().
		Int64("imported", final.Imported).
		Int64("skipped", final.Skipped).
		Int64("errors", final.Errors).
		Dur("duration", final.Duration()).
		Msg("Import completed")

	return final, nil
}

func (i *Importer) batchSize() int {
	if i.cfg.BatchSize <= 0 {
		return defaultBatchSize
	}
	return i.cfg.BatchSize
}

func (i *Importer) newLimiter() *rate.Limiter {
	if i.cfg.BatchesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(i.cfg.BatchesPerSecond), 1)
}

// run is the state of one Import call.
type run struct {
	importer *Importer
	source   Source
	stop     <-chan struct{}
	limiter  *rate.Limiter
}

func (r *run) copyAll(ctx context.Context) error {
	sink := r.importer.sink
	if err := copyTable(ctx, r, TableProducts, r.source.Products,
		func(p database.Product) bool { return p.SKU != "" },
		sink.InsertProducts); err != nil {
		return err
	}
	if err := copyTable(ctx, r, TableOrders, r.source.Orders,
		func(o database.Order) bool { return o.OrderID != "" && !o.Date.IsZero() },
		sink.InsertOrders); err != nil {
		return err
	}
	return copyTable(ctx, r, TableOrderItems, r.source.OrderItems,
		func(it database.OrderItem) bool { return it.OrderID != "" && it.SKU != "" },
		sink.InsertOrderItems)
}

// copyTable pages through one table until a short batch.
func copyTable[T any](
	ctx context.Context,
	r *run,
	table string,
	read func(context.Context, *T, int) ([]T, error),
	valid func(T) bool,
	write func(context.Context, []T) (int, error),
) error {
	i := r.importer
	i.mu.Lock()
	i.stats.CurrentTable = table
	i.mu.Unlock()

	limit := i.batchSize()
	var last *T
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return ErrCanceled
		default:
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		rows, err := read(ctx, last, limit)
		if err != nil {
			return fmt.Errorf("read %s batch: %w", table, err)
		}
		if len(rows) == 0 {
			return nil
		}

		var keep []T
		for _, row := range rows {
			if valid(row) {
				keep = append(keep, row)
			}
		}
		imported, failed := writeBatch(ctx, i.cfg.DryRun, table, keep, write)
		skipped := len(rows) - imported - failed
		metrics.ImportBatchDuration.Observe(time.Since(start).Seconds())
		r.record(table, len(rows), imported, skipped, failed)

		if len(rows) < limit {
			return nil
		}
		last = &rows[len(rows)-1]
	}
}

// writeBatch stores rows and returns the imported and failed row counts.
// A failed write marks every row of the batch as failed and the run goes on.
func writeBatch[T any](ctx context.Context, dryRun bool, table string, rows []T, write func(context.Context, []T) (int, error)) (imported, failed int) {
	if len(rows) == 0 {
		return 0, 0
	}
	if dryRun {
		return len(rows), 0
	}
	n, err := write(ctx, rows)
	if err != nil {
		logging.Error().Err(err).Str("table", table).Int("rows", len(rows)).Msg("Failed to write batch")
		return 0, len(rows)
	}
	return n, 0
}

func (r *run) record(table string, processed, imported, skipped, failed int) {
	metrics.ImportRows.WithLabelValues(table, "imported").Add(float64(imported))
	metrics.ImportRows.WithLabelValues(table, "skipped").Add(float64(skipped))
	metrics.ImportRows.WithLabelValues(table, "error").Add(float64(failed))

	i := r.importer
	i.mu.Lock()
	i.stats.Processed += int64(processed)
	i.stats.Imported += int64(imported)
	i.stats.Skipped += int64(skipped)
	i.stats.Errors += int64(failed)
	stats := *i.stats
	i.mu.Unlock()

	logging.Info().
		Str("table", table).
		Float64("progress_percent", stats.Progress()).
		Int64("processed", stats.Processed).
		Int64("total_records", stats.TotalRecords).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Int64("errors", stats.Errors).
		Float64("records_per_second", stats.RecordsPerSecond()).
		Msg("Import progress")
}

// Stop cancels a running import operation.
func (i *Importer) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running {
		return ErrNotRunning
	}

	close(i.stopChan)
	i.stopChan = make(chan struct{})

	return nil
}

// GetStats returns a copy of the current import statistics.
func (i *Importer) GetStats() *ImportStats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.stats == nil {
		return &ImportStats{DryRun: i.cfg.DryRun}
	}

	stats := *i.stats
	return &stats
}

// IsRunning returns whether an import is currently in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

// Summary reports the current or last run.
func (i *Importer) Summary() *ProgressSummary {
	return i.GetStats().ToSummary(i.IsRunning())
}
