// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/cache"
)

// referenceDate is the configured RFM reference date, or now.
func (s *Service) referenceDate() time.Time {
	if ref, ok := s.cfg.ReferenceDate(); ok {
		return ref
	}
	return s.now()
}

// RFM scores every customer with orders on or before the reference date.
func (s *Service) RFM(ctx context.Context) (res *analytics.RFMResult, err error) {
	start := time.Now()
	defer func() { observe(engineRFM, start, err) }()

	ref := s.referenceDate()
	lines, err := s.store.OrderLines(ctx, time.Time{}, ref)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	return analytics.RFM(lines, ref)
}

// RFMInsights summarizes the current RFM run.
func (s *Service) RFMInsights(ctx context.Context) (*analytics.RFMInsights, error) {
	res, err := s.RFM(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BuildRFMInsights(res), nil
}

// Cohorts measures retention for customers whose orders fall on or after the
// configured cohort start.
func (s *Service) Cohorts(ctx context.Context, period analytics.Period) (res *analytics.CohortResult, err error) {
	start := time.Now()
	defer func() { observe(engineCohort, start, err) }()

	from := s.cfg.CohortStartDate()
	lines, err := s.store.OrderLines(ctx, from, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	return analytics.Cohorts(lines, from, period)
}

// CohortInsights summarizes a cohort run.
func (s *Service) CohortInsights(ctx context.Context, period analytics.Period) (*analytics.CohortInsights, error) {
	res, err := s.Cohorts(ctx, period)
	if err != nil {
		return nil, err
	}
	return analytics.BuildCohortInsights(res), nil
}

// MarketBasket mines the current baskets. Results are cached per threshold
// pair and basket fingerprint, at most maxBasketResults at a time.
func (s *Service) MarketBasket(ctx context.Context, minSupport, minConfidence float64) (res *analytics.BasketResult, err error) {
	start := time.Now()
	defer func() { observe(engineBasket, start, err) }()

	lines, err := s.store.BasketLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load basket lines: %w", err)
	}
	transactions := analytics.Transactions(lines)

	key := cache.GenerateKey(fmt.Sprintf("basket:%g:%g", minSupport, minConfidence), transactions)
	res, _, err = s.baskets.GetOrBuild(ctx, key, func() (*analytics.BasketResult, error) {
		return analytics.MarketBasket(transactions, minSupport, minConfidence)
	})
	return res, err
}

// defaultRules mines with the default thresholds; the ranking endpoints
// all read from this rule set.
func (s *Service) defaultRules(ctx context.Context) (*analytics.BasketResult, error) {
	return s.MarketBasket(ctx, analytics.DefaultMinSupport, analytics.DefaultMinConfidence)
}

// TopAssociations returns the limit strongest rules by lift.
func (s *Service) TopAssociations(ctx context.Context, limit int) ([]analytics.AssociationRule, error) {
	res, err := s.defaultRules(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopAssociations(res, limit)
}

// ProductRecommendations returns rules whose antecedent contains product.
func (s *Service) ProductRecommendations(ctx context.Context, product string, limit int) (*analytics.ProductRecommendations, error) {
	res, err := s.defaultRules(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.RecommendForProduct(res, product, limit)
}

// BasketInsights reports the headline rules and itemsets.
func (s *Service) BasketInsights(ctx context.Context) (*analytics.BasketInsights, error) {
	res, err := s.defaultRules(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BuildBasketInsights(res)
}

// CustomerRecommendations suggests products for one customer from their
// purchase history.
func (s *Service) CustomerRecommendations(ctx context.Context, customerID string) (*analytics.CustomerRecommendations, error) {
	purchased, err := s.store.CustomerProducts(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer products: %w", err)
	}
	if len(purchased) == 0 {
		return analytics.RecommendForCustomer(nil, customerID, nil)
	}
	res, err := s.defaultRules(ctx)
	if err != nil && !analytics.IsEmpty(err) {
		return nil, err
	}
	return analytics.RecommendForCustomer(res, customerID, purchased)
}
