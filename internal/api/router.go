// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tillsight/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works everywhere
	r.Use(APISecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/stats", h.Stats)
		r.Get("/top-products", h.TopProducts)
		r.Get("/sales-trends", h.SalesTrends)
		r.Get("/category-performance", h.CategoryPerformance)
		r.Get("/geographic-distribution", h.GeographicDistribution)
		r.Get("/customer-metrics", h.CustomerMetrics)
		r.Get("/executive-summary", h.ExecutiveSummary)

		r.Get("/rfm-analysis", h.RFMAnalysis)
		r.Get("/rfm-insights", h.RFMInsights)
		r.Get("/cohort-analysis", h.CohortAnalysis)
		r.Get("/cohort-insights", h.CohortInsights)

		r.Route("/market-basket", func(r chi.Router) {
			r.Get("/", h.MarketBasket)
			r.Get("/top-associations", h.TopAssociations)
			r.Get("/products/{product}", h.ProductRecommendations)
			r.Get("/insights", h.BasketInsights)
		})
		r.Get("/recommendations/{customer_id}", h.CustomerRecommendations)

		r.Route("/customer-segments", func(r chi.Router) {
			r.Get("/", h.CustomerSegments)
			r.Post("/predict", h.PredictSegment)
			r.Get("/{id}/recommendations", h.SegmentRecommendations)
		})

		r.Route("/sales-forecast", func(r chi.Router) {
			r.Get("/", h.SalesForecast)
			r.Get("/model-performance", h.ModelPerformance)
		})

		if h.imports != nil {
			r.Post("/import", h.StartImport)
			r.Get("/import/status", h.ImportStatus)
		}
	})

	return r
}
