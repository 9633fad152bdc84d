// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/validation"
)

// Query defaults. Invalid values fall back to these instead of failing.
const (
	defaultMinSupport      = 0.01
	defaultMinConfidence   = 0.3
	defaultForecastMonths  = 3
	defaultTopProducts     = 20
	defaultAssociations    = 20
	defaultProductRuleRecs = 10
)

// basketParams are the /api/market-basket thresholds.
type basketParams struct {
	MinSupport    float64 `query:"min_support" validate:"gte=0,lte=1"`
	MinConfidence float64 `query:"min_confidence" validate:"gte=0,lte=1"`
}

type forecastParams struct {
	Months int `query:"months" validate:"gte=1,lte=12"`
}

type limitParams struct {
	Limit int `query:"limit" validate:"gte=1,lte=1000"`
}

// getFloatParam returns the query value as a finite float, or def.
func getFloatParam(r *http.Request, name string, def float64) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// getIntParam returns the query value as an int, or def.
func getIntParam(r *http.Request, name string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func parseBasketParams(r *http.Request) basketParams {
	p := basketParams{
		MinSupport:    getFloatParam(r, "min_support", defaultMinSupport),
		MinConfidence: getFloatParam(r, "min_confidence", defaultMinConfidence),
	}
	if verr := validation.ValidateStruct(p); verr != nil {
		if verr.Has("min_support") {
			p.MinSupport = defaultMinSupport
		}
		if verr.Has("min_confidence") {
			p.MinConfidence = defaultMinConfidence
		}
	}
	return p
}

func parseForecastParams(r *http.Request) forecastParams {
	p := forecastParams{Months: getIntParam(r, "months", defaultForecastMonths)}
	if validation.ValidateStruct(p) != nil {
		p.Months = defaultForecastMonths
	}
	return p
}

func parseLimitParams(r *http.Request, def int) limitParams {
	p := limitParams{Limit: getIntParam(r, "limit", def)}
	if validation.ValidateStruct(p) != nil {
		p.Limit = def
	}
	return p
}

// parsePeriod reads ?period=, defaulting to month.
func parsePeriod(r *http.Request) analytics.Period {
	return analytics.ParsePeriod(r.URL.Query().Get("period"))
}

// predictRequest is the POST /api/customer-segments/predict body.
type predictRequest struct {
	TotalOrders         *float64 `json:"total_orders" validate:"required,gte=0"`
	TotalSpent          *float64 `json:"total_spent" validate:"required,gte=0"`
	AvgOrderValue       *float64 `json:"avg_order_value" validate:"required,gte=0"`
	CategoriesPurchased *float64 `json:"categories_purchased" validate:"required,gte=0"`
	AvgOrderFrequency   *float64 `json:"avg_order_frequency" validate:"required,gte=0"`
	AvgQuantityPerOrder *float64 `json:"avg_quantity_per_order" validate:"required,gte=0"`
}

func (p predictRequest) input() analytics.SegmentInput {
	return analytics.SegmentInput{
		TotalOrders:         *p.TotalOrders,
		TotalSpent:          *p.TotalSpent,
		AvgOrderValue:       *p.AvgOrderValue,
		CategoriesPurchased: *p.CategoriesPurchased,
		AvgOrderFrequency:   *p.AvgOrderFrequency,
		AvgQuantityPerOrder: *p.AvgQuantityPerOrder,
	}
}
