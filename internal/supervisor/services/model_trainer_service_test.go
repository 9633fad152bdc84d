// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type mockTrainer struct {
	trainCalls   atomic.Int32
	cleanupRuns  atomic.Int32
	cleanupEnded atomic.Bool
	trainErr     error
}

func (m *mockTrainer) Train(context.Context) error {
	m.trainCalls.Add(1)
	return m.trainErr
}

func (m *mockTrainer) RunCacheCleanup(ctx context.Context, _ time.Duration) {
	m.cleanupRuns.Add(1)
	<-ctx.Done()
	m.cleanupEnded.Store(true)
}

func TestModelTrainerService_TrainOnStartup(t *testing.T) {
	tests := []struct {
		name      string
		onStartup bool
		trainErr  error
		want      int32
	}{
		{"enabled", true, nil, 1},
		{"disabled", false, nil, 0},
		{"error does not stop service", true, errors.New("no data"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := &mockTrainer{trainErr: tt.trainErr}
			svc := NewModelTrainerService(trainer, ModelTrainerConfig{
				TrainOnStartup: tt.onStartup,
				TrainInterval:  time.Hour,
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
			}
			if got := trainer.trainCalls.Load(); got != tt.want {
				t.Errorf("Train() called %d times, want %d", got, tt.want)
			}
			if trainer.cleanupRuns.Load() != 1 || !trainer.cleanupEnded.Load() {
				t.Error("cache cleanup did not run for the service lifetime")
			}
		})
	}
}

func TestModelTrainerService_ScheduledTraining(t *testing.T) {
	trainer := &mockTrainer{}
	svc := NewModelTrainerService(trainer, ModelTrainerConfig{TrainInterval: 50 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 130*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := trainer.trainCalls.Load(); got < 2 {
		t.Errorf("Train() called %d times, want >= 2", got)
	}
}

func TestNewModelTrainerService_Defaults(t *testing.T) {
	svc := NewModelTrainerService(&mockTrainer{}, ModelTrainerConfig{}, zerolog.Nop())
	if svc.config.TrainInterval != 24*time.Hour {
		t.Errorf("TrainInterval = %v, want 24h", svc.config.TrainInterval)
	}
	if svc.config.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", svc.config.CleanupInterval)
	}
	if svc.config.TrainTimeout != 30*time.Minute {
		t.Errorf("TrainTimeout = %v, want 30m", svc.config.TrainTimeout)
	}
	if svc.String() != "model-trainer" {
		t.Errorf("String() = %q", svc.String())
	}
}
