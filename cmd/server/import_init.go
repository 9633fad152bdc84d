// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package main

import (
	"github.com/tomtom215/tillsight/internal/config"
	"github.com/tomtom215/tillsight/internal/database"
	pgimport "github.com/tomtom215/tillsight/internal/import"
	"github.com/tomtom215/tillsight/internal/logging"
	"github.com/tomtom215/tillsight/internal/supervisor"
	"github.com/tomtom215/tillsight/internal/supervisor/services"
)

// initImport adds the PostgreSQL import service to the data layer. It
// returns nil when importing is disabled, which also keeps the import
// routes off the router.
func initImport(cfg *config.Config, db *database.DB, tree *supervisor.SupervisorTree) *services.ImportService {
	if !cfg.Import.Enabled {
		logging.Info().Msg("PostgreSQL import disabled (IMPORT_ENABLED=false)")
		return nil
	}

	importer := pgimport.NewImporter(&cfg.Import, pgimport.PostgresOpener(cfg.Import.PostgresDSN), db)
	svc := services.NewImportService(importer, cfg.Import.AutoStart)
	tree.AddDataService(svc)

	logging.Info().
		Bool("auto_start", cfg.Import.AutoStart).
		Int("batch_size", cfg.Import.BatchSize).
		Float64("batches_per_second", cfg.Import.BatchesPerSecond).
		Bool("dry_run", cfg.Import.DryRun).
		Msg("PostgreSQL import service added to supervisor tree")

	return svc
}
