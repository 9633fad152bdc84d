// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package reports turns store rows into the payloads served by the API.

It is the only layer that knows about both the DuckDB store and the pure
engines in internal/analytics. Trained artifacts (mined rule sets, the
segmentation model, the forecast forests) are kept in TTL caches keyed by
a fingerprint of the rows they were fitted on, so two requests over the
same data share one model and nobody sees a model that is still being
built.

Segmentation and forecasting never fail from the caller's point of view:
any error is logged at WARN and replaced by the fixed fallback payload.
*/
package reports

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/cache"
	"github.com/tomtom215/tillsight/internal/config"
	"github.com/tomtom215/tillsight/internal/database"
	"github.com/tomtom215/tillsight/internal/metrics"
)

// Store is the subset of *database.DB the reports need.
type Store interface {
	OrderLines(ctx context.Context, from, to time.Time) ([]analytics.OrderLine, error)
	BasketLines(ctx context.Context) ([]analytics.BasketLine, error)
	CustomerFeatures(ctx context.Context, limit int) ([]analytics.CustomerFeatures, error)
	DailySales(ctx context.Context, from, to time.Time) ([]analytics.DailySales, error)
	CustomerProducts(ctx context.Context, customerID string) ([]string, error)

	OverallStats(ctx context.Context) (*database.OverallStats, error)
	TopProducts(ctx context.Context, limit int) ([]database.TopProduct, error)
	SalesTrends(ctx context.Context) ([]database.SalesTrend, error)
	CategoryPerformance(ctx context.Context) ([]database.CategoryPerformance, error)
	GeographicDistribution(ctx context.Context) ([]database.RegionSales, error)
	CustomerMetrics(ctx context.Context) (*database.CustomerMetrics, error)
}

// Engine names used in metrics and logs.
const (
	engineRFM      = "rfm"
	engineCohort   = "cohort"
	engineBasket   = "market_basket"
	engineSegments = "segmentation"
	engineForecast = "forecast"
)

// maxBasketResults caps the mined rule sets kept at once. Every threshold
// pair in a query string is its own entry.
const maxBasketResults = 8

// segmentation is one fitted segmentation run.
type segmentation struct {
	model  *analytics.SegmentModel
	result *analytics.SegmentResult
}

// Service builds every report. It is safe for concurrent use.
type Service struct {
	store Store
	cfg   config.AnalyticsConfig
	now   func() time.Time

	baskets   *cache.Cache[*analytics.BasketResult]
	segments  *cache.Cache[*segmentation]
	forecasts *cache.Cache[*analytics.ForecastModel]

	mu             sync.RWMutex
	latestSegment  *analytics.SegmentModel
	latestForecast *analytics.ForecastModel
}

// NewService creates a Service over store.
func NewService(store Store, cfg config.AnalyticsConfig) *Service {
	ttl := cfg.ModelCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		baskets:   cache.NewBounded[*analytics.BasketResult]("basket_rules", ttl, maxBasketResults),
		segments:  cache.New[*segmentation]("segmentation_models", ttl),
		forecasts: cache.New[*analytics.ForecastModel]("forecast_models", ttl),
	}
}

// RunCacheCleanup evicts expired models every interval until ctx is done.
func (s *Service) RunCacheCleanup(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	for _, run := range []func(context.Context, time.Duration){
		s.baskets.RunCleanup,
		s.segments.RunCleanup,
		s.forecasts.RunCleanup,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx, interval)
		}()
	}
	wg.Wait()
}

// observe records an engine run with its outcome.
func observe(engine string, start time.Time, err error) {
	outcome := "success"
	switch {
	case analytics.IsEmpty(err):
		outcome = "empty"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordAnalysis(engine, outcome, time.Since(start))
}
