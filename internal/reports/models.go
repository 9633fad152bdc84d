// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/cache"
	"github.com/tomtom215/tillsight/internal/logging"
	"github.com/tomtom215/tillsight/internal/metrics"
)

// trainSegmentation fits (or reuses) the segmentation model for the current
// customer population.
func (s *Service) trainSegmentation(ctx context.Context) (*segmentation, error) {
	customers, err := s.store.CustomerFeatures(ctx, s.cfg.SegmentCustomerLimit)
	if err != nil {
		return nil, fmt.Errorf("load customer features: %w", err)
	}

	key := cache.GenerateKey(engineSegments, customers)
	seg, cached, err := s.segments.GetOrBuild(ctx, key, func() (*segmentation, error) {
		start := time.Now()
		model, result, err := analytics.Segment(customers)
		metrics.RecordTraining(engineSegments, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		return &segmentation{model: model, result: result}, nil
	})
	if err != nil {
		return nil, err
	}
	if !cached {
		logging.Ctx(ctx).Debug().
			Int("customers", seg.result.Summary.TotalCustomers).
			Msg("Segmentation model trained")
	}

	s.mu.Lock()
	s.latestSegment = seg.model
	s.mu.Unlock()
	return seg, nil
}

// Segments clusters the customer base. Any failure yields the fixed sample
// payload flagged as a fallback.
func (s *Service) Segments(ctx context.Context) *analytics.SegmentResult {
	start := time.Now()
	seg, err := s.trainSegmentation(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Segmentation failed, serving fallback segments")
		metrics.RecordAnalysis(engineSegments, "fallback", time.Since(start))
		return analytics.SegmentFallback()
	}
	metrics.RecordAnalysis(engineSegments, "success", time.Since(start))
	return seg.result
}

// PredictSegment places a described customer into the latest fitted
// cluster set, training one first if none exists yet.
func (s *Service) PredictSegment(ctx context.Context, in analytics.SegmentInput) (*analytics.SegmentPrediction, error) {
	s.mu.RLock()
	model := s.latestSegment
	s.mu.RUnlock()

	if model == nil {
		if seg, err := s.trainSegmentation(ctx); err == nil {
			model = seg.model
		} else {
			logging.Ctx(ctx).Warn().Err(err).Msg("No segmentation model available for prediction")
		}
	}
	return model.Predict(in)
}

// SegmentRecommendations returns the playbook for cluster id.
func (s *Service) SegmentRecommendations(id int) (*analytics.SegmentStrategy, error) {
	return analytics.SegmentRecommendations(id)
}

// trainForecast fits (or reuses) the forecast model over the configured
// training window.
func (s *Service) trainForecast(ctx context.Context) (*analytics.ForecastModel, error) {
	from, to := s.cfg.ForecastWindow()
	daily, err := s.store.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load daily sales: %w", err)
	}

	key := cache.GenerateKey(engineForecast, daily)
	model, _, err := s.forecasts.GetOrBuild(ctx, key, func() (*analytics.ForecastModel, error) {
		start := time.Now()
		m, err := analytics.TrainForecast(daily, s.now())
		metrics.RecordTraining(engineForecast, time.Since(start), err)
		if err == nil {
			logging.Ctx(ctx).Debug().
				Int("days", len(daily)).
				Float64("revenue_r2", m.Metrics.Revenue.R2).
				Msg("Forecast model trained")
		}
		return m, err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.latestForecast = model
	s.mu.Unlock()
	return model, nil
}

// Forecast predicts months*30 days of revenue and orders. Any failure
// yields the synthetic fallback series.
func (s *Service) Forecast(ctx context.Context, months int) *analytics.ForecastResult {
	start := time.Now()
	days := months * analytics.DaysPerMonth

	res, err := s.forecast(ctx, days)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("days", days).Msg("Forecast failed, serving fallback series")
		metrics.RecordAnalysis(engineForecast, "fallback", time.Since(start))
		return analytics.ForecastFallback(days, s.now())
	}
	metrics.RecordAnalysis(engineForecast, "success", time.Since(start))
	return res
}

func (s *Service) forecast(ctx context.Context, days int) (*analytics.ForecastResult, error) {
	model, err := s.trainForecast(ctx)
	if err != nil {
		return nil, err
	}
	return model.Forecast(days)
}

// ModelPerformance describes the most recently trained forecast model.
func (s *Service) ModelPerformance() (*analytics.ModelPerformance, error) {
	s.mu.RLock()
	model := s.latestForecast
	s.mu.RUnlock()
	return model.Performance()
}

// Train fits the segmentation and forecast models, warming the caches.
func (s *Service) Train(ctx context.Context) error {
	var errs []error
	if _, err := s.trainSegmentation(ctx); err != nil {
		errs = append(errs, fmt.Errorf("segmentation: %w", err))
	}
	if _, err := s.trainForecast(ctx); err != nil {
		errs = append(errs, fmt.Errorf("forecast: %w", err))
	}
	return errors.Join(errs...)
}
