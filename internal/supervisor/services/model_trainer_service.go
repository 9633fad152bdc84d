// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ModelTrainer is implemented by *reports.Service.
type ModelTrainer interface {
	// Train fits the segmentation and forecast models.
	Train(ctx context.Context) error

	// RunCacheCleanup evicts expired model cache entries until ctx is done.
	RunCacheCleanup(ctx context.Context, interval time.Duration)
}

// ModelTrainerConfig controls training frequency.
type ModelTrainerConfig struct {
	// TrainOnStartup trains once when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain. Default: 24h
	TrainInterval time.Duration

	// CleanupInterval is how often expired cache entries are evicted.
	// Default: 5m
	CleanupInterval time.Duration

	// TrainTimeout bounds one training cycle. Default: 30m
	TrainTimeout time.Duration
}

// ModelTrainerService keeps the trained models fresh.
//
// It runs in the model layer of the supervisor tree and warms the model
// caches so the first dashboard request after a restart does not pay for
// training:
//
//  1. Starts the cache cleanup loop in a goroutine
//  2. Trains once on startup when TrainOnStartup is set
//  3. Retrains every TrainInterval, each cycle bounded by TrainTimeout
//
// A failed training cycle is logged at WARN and retried on the next tick;
// it never restarts the service, and the API keeps serving fallbacks.
//
// Example:
//
//	trainer := services.NewModelTrainerService(reportsSvc, services.ModelTrainerConfig{
//	    TrainOnStartup: cfg.Analytics.TrainOnStartup,
//	    TrainInterval:  cfg.Analytics.TrainInterval,
//	}, logging.Logger())
//	tree.AddModelService(trainer)
type ModelTrainerService struct {
	trainer ModelTrainer
	config  ModelTrainerConfig
	logger  zerolog.Logger
	name    string
}

// NewModelTrainerService creates the trainer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelTrainerService(trainer ModelTrainer, cfg ModelTrainerConfig, logger zerolog.Logger) *ModelTrainerService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &ModelTrainerService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "model_trainer").Logger(),
		name:    "model-trainer",
	}
}

// Serve implements suture.Service.
//
// It returns ctx.Err() once the supervisor cancels ctx, after the cleanup
// goroutine has exited.
func (s *ModelTrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("model trainer starting")

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		s.trainer.RunCacheCleanup(ctx, s.config.CleanupInterval)
	}()
	defer func() { <-cleanupDone }()

	if s.config.TrainOnStartup {
		if err := s.train(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial training failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model trainer shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled training triggered")
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}
		}
	}
}

func (s *ModelTrainerService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	if err := s.trainer.Train(trainCtx); err != nil {
		return err
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("model training complete")
	return nil
}

// String implements fmt.Stringer for suture logs.
func (s *ModelTrainerService) String() string {
	return s.name
}
