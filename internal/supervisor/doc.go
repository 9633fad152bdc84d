// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package supervisor runs Tillsight's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("tillsight")
	├── DataSupervisor ("data-layer")
	│   └── ImportService (if IMPORT_ENABLED)
	├── ModelSupervisor ("model-layer")
	│   └── ModelTrainerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so an importer that keeps losing
its PostgreSQL connection backs off on its own while the API keeps serving.
Supervisor events are logged through sutureslog into the zerolog-backed
slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddModelService(services.NewModelTrainerService(svc, trainerCfg, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
