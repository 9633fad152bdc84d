// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package reports

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/database"
	"github.com/tomtom215/tillsight/internal/logging"
)

// Section sizes of the executive summary.
const (
	summaryTopProducts   = 5
	summaryTopCategories = 3
	summaryTrendPeriods  = 3
	summaryAssociations  = 20
)

var executiveRecommendations = []string{
	"Focus on high-value customer segments for retention",
	"Implement cross-selling strategies based on product associations",
	"Optimize inventory for top-performing categories",
	"Develop targeted campaigns for at-risk customer segments",
}

// RevenueMetrics are the headline revenue numbers.
type RevenueMetrics struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalOrders        int64   `json:"total_orders"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
}

// CustomerInsights pairs segment profiles with the RFM revenue outlook.
type CustomerInsights struct {
	TotalCustomers   int64                               `json:"total_customers"`
	TopSegments      map[string]analytics.ClusterProfile `json:"top_segments"`
	RFMOpportunities *analytics.RevenueOpportunity       `json:"rfm_opportunities"`
}

// ProductInsights covers the catalog and cross-sell potential.
type ProductInsights struct {
	TotalProducts            int64                 `json:"total_products"`
	TopCategories            []database.TopProduct `json:"top_categories"`
	AssociationOpportunities int                   `json:"association_opportunities"`
}

// RetentionMetrics are the cohort headline numbers.
type RetentionMetrics struct {
	AvgRetention    *analytics.CohortKeyMetrics `json:"avg_retention"`
	RetentionTrends []analytics.RetentionTrend  `json:"retention_trends"`
}

// ExecutiveSummary is the one-page business overview.
type ExecutiveSummary struct {
	RevenueMetrics   RevenueMetrics   `json:"revenue_metrics"`
	CustomerInsights CustomerInsights `json:"customer_insights"`
	ProductInsights  ProductInsights  `json:"product_insights"`
	RetentionMetrics RetentionMetrics `json:"retention_metrics"`
	Recommendations  []string         `json:"recommendations"`
}

// ExecutiveSummary gathers every sub-report concurrently. Only the overall
// stats are required; any other section that fails is left empty.
func (s *Service) ExecutiveSummary(ctx context.Context) (*ExecutiveSummary, error) {
	var (
		stats        *database.OverallStats
		topProducts  []database.TopProduct
		associations []analytics.AssociationRule
		segments     *analytics.SegmentResult
		rfm          *analytics.RFMInsights
		cohort       *analytics.CohortInsights
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.store.OverallStats(gctx)
		if err != nil {
			return fmt.Errorf("overall stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		topProducts = optional(gctx, "top_products", func() ([]database.TopProduct, error) {
			return s.store.TopProducts(gctx, summaryTopProducts)
		})
		return nil
	})
	g.Go(func() error {
		associations = optional(gctx, "top_associations", func() ([]analytics.AssociationRule, error) {
			return s.TopAssociations(gctx, summaryAssociations)
		})
		return nil
	})
	g.Go(func() error {
		segments = s.Segments(gctx)
		return nil
	})
	g.Go(func() error {
		rfm = optional(gctx, "rfm_insights", func() (*analytics.RFMInsights, error) {
			return s.RFMInsights(gctx)
		})
		return nil
	})
	g.Go(func() error {
		cohort = optional(gctx, "cohort_insights", func() (*analytics.CohortInsights, error) {
			return s.CohortInsights(gctx, analytics.PeriodMonth)
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &ExecutiveSummary{
		RevenueMetrics: RevenueMetrics{
			TotalRevenue:       stats.TotalRevenue,
			TotalOrders:        stats.TotalOrders,
			AvgOrderValue:      stats.AvgOrderValue,
			RevenuePerCustomer: math.Round(stats.TotalRevenue/float64(max(stats.TotalCustomers, 1))*100) / 100,
		},
		CustomerInsights: CustomerInsights{
			TotalCustomers: stats.TotalCustomers,
			TopSegments:    map[string]analytics.ClusterProfile{},
		},
		ProductInsights: ProductInsights{
			TotalProducts:            stats.TotalProducts,
			TopCategories:            firstN(topProducts, summaryTopCategories),
			AssociationOpportunities: len(associations),
		},
		RetentionMetrics: RetentionMetrics{
			RetentionTrends: []analytics.RetentionTrend{},
		},
		Recommendations: executiveRecommendations,
	}
	if segments != nil {
		summary.CustomerInsights.TopSegments = segments.ClusterProfiles
	}
	if rfm != nil {
		summary.CustomerInsights.RFMOpportunities = rfm.RevenueOpportunity
	}
	if cohort != nil {
		summary.RetentionMetrics.AvgRetention = &cohort.KeyMetrics
		summary.RetentionMetrics.RetentionTrends = firstN(cohort.RetentionTrends, summaryTrendPeriods)
	}
	return summary, nil
}

// optional runs fn and logs instead of failing when it errors.
func optional[T any](ctx context.Context, section string, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		var zero T
		if !analytics.IsEmpty(err) {
			logging.Ctx(ctx).Warn().Err(err).Str("section", section).Msg("Executive summary section unavailable")
		}
		return zero
	}
	return v
}

func firstN[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Stats returns store-wide totals.
func (s *Service) Stats(ctx context.Context) (*database.OverallStats, error) {
	return s.store.OverallStats(ctx)
}

// TopProducts ranks products by revenue; limit is clamped by the store.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]database.TopProduct, error) {
	return s.store.TopProducts(ctx, limit)
}

// SalesTrends returns monthly sales.
func (s *Service) SalesTrends(ctx context.Context) ([]database.SalesTrend, error) {
	return s.store.SalesTrends(ctx)
}

// CategoryPerformance ranks categories by revenue.
func (s *Service) CategoryPerformance(ctx context.Context) ([]database.CategoryPerformance, error) {
	return s.store.CategoryPerformance(ctx)
}

// GeographicDistribution returns revenue per shipping state.
func (s *Service) GeographicDistribution(ctx context.Context) ([]database.RegionSales, error) {
	return s.store.GeographicDistribution(ctx)
}

// CustomerMetrics describes the customer base.
func (s *Service) CustomerMetrics(ctx context.Context) (*database.CustomerMetrics, error) {
	return s.store.CustomerMetrics(ctx)
}
