// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package services

import (
	"context"
	"errors"

	pgimport "github.com/tomtom215/tillsight/internal/import"
	"github.com/tomtom215/tillsight/internal/logging"
)

// Importer is the lifecycle of *pgimport.Importer.
type Importer interface {
	Import(ctx context.Context) (*pgimport.ImportStats, error)
	IsRunning() bool
	Stop() error
	Summary() *pgimport.ProgressSummary
}

// ImportService runs PostgreSQL imports under supervision.
//
// With autoStart an import runs as soon as the service starts. Further runs
// are requested with Trigger, normally from the API. A failed import is
// logged and does not restart the service; the next Trigger retries it.
//
// Imports run on the Serve goroutine and observe ctx, so Serve returns only
// after a running import has stopped and no batch is left writing to DuckDB.
//
// Thread Safety: Trigger and Status may be called from HTTP handlers while
// Serve runs. At most one run is queued behind the running one.
type ImportService struct {
	importer  Importer
	autoStart bool
	triggers  chan struct{}
	name      string
}

// NewImportService wraps importer.
func NewImportService(importer Importer, autoStart bool) *ImportService {
	return &ImportService{
		importer:  importer,
		autoStart: autoStart,
		triggers:  make(chan struct{}, 1),
		name:      "pg-import",
	}
}

// Trigger requests an import run. It returns pgimport.ErrAlreadyRunning if
// one is in progress or already queued.
func (s *ImportService) Trigger() error {
	if s.importer.IsRunning() {
		return pgimport.ErrAlreadyRunning
	}
	select {
	case s.triggers <- struct{}{}:
		return nil
	default:
		return pgimport.ErrAlreadyRunning
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Runs an import immediately when autoStart is set
//  2. Runs one import per Trigger call
//  3. On ctx cancellation, stops any import still running and returns ctx.Err()
func (s *ImportService) Serve(ctx context.Context) error {
	if s.autoStart {
		logging.Info().Msg("Starting automatic PostgreSQL import")
		s.run(ctx)
	} else {
		logging.Info().Msg("Import service started (on-demand mode - use API to trigger)")
	}

	for {
		select {
		case <-ctx.Done():
			if s.importer.IsRunning() {
				logging.Info().Msg("Stopping running import due to shutdown")
				if err := s.importer.Stop(); err != nil && !errors.Is(err, pgimport.ErrNotRunning) {
					logging.Warn().Err(err).Msg("Failed to stop import")
				}
			}
			return ctx.Err()

		case <-s.triggers:
			s.run(ctx)
		}
	}
}

func (s *ImportService) run(ctx context.Context) {
	stats, err := s.importer.Import(ctx)
	switch {
	case err == nil:
		logging.Info().
			Int64("imported", stats.Imported).
			Int64("skipped", stats.Skipped).
			Int64("errors", stats.Errors).
			Msg("Import finished")
	case ctx.Err() != nil:
		logging.Info().Msg("Import canceled due to shutdown")
	case errors.Is(err, pgimport.ErrCanceled):
		logging.Info().Msg("Import stopped")
	default:
		logging.Error().Err(err).Msg("Import failed")
	}
}

// Status reports the running or most recent import.
func (s *ImportService) Status() *pgimport.ProgressSummary {
	return s.importer.Summary()
}

// String implements fmt.Stringer for suture logs.
func (s *ImportService) String() string {
	return s.name
}
