// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tillsight/internal/analytics"
	"github.com/tomtom215/tillsight/internal/database"
	pgimport "github.com/tomtom215/tillsight/internal/import"
	"github.com/tomtom215/tillsight/internal/reports"
	"github.com/tomtom215/tillsight/internal/validation"
)

// Version is reported by /health.
const Version = "1.0.0"

const maxBodyBytes = 1 << 20

// Reports is the report surface the handlers serve. *reports.Service
// implements it.
type Reports interface {
	RFM(ctx context.Context) (*analytics.RFMResult, error)
	RFMInsights(ctx context.Context) (*analytics.RFMInsights, error)
	Cohorts(ctx context.Context, period analytics.Period) (*analytics.CohortResult, error)
	CohortInsights(ctx context.Context, period analytics.Period) (*analytics.CohortInsights, error)
	MarketBasket(ctx context.Context, minSupport, minConfidence float64) (*analytics.BasketResult, error)
	TopAssociations(ctx context.Context, limit int) ([]analytics.AssociationRule, error)
	ProductRecommendations(ctx context.Context, product string, limit int) (*analytics.ProductRecommendations, error)
	BasketInsights(ctx context.Context) (*analytics.BasketInsights, error)
	CustomerRecommendations(ctx context.Context, customerID string) (*analytics.CustomerRecommendations, error)
	Segments(ctx context.Context) *analytics.SegmentResult
	PredictSegment(ctx context.Context, in analytics.SegmentInput) (*analytics.SegmentPrediction, error)
	SegmentRecommendations(id int) (*analytics.SegmentStrategy, error)
	Forecast(ctx context.Context, months int) *analytics.ForecastResult
	ModelPerformance() (*analytics.ModelPerformance, error)
	ExecutiveSummary(ctx context.Context) (*reports.ExecutiveSummary, error)

	Stats(ctx context.Context) (*database.OverallStats, error)
	TopProducts(ctx context.Context, limit int) ([]database.TopProduct, error)
	SalesTrends(ctx context.Context) ([]database.SalesTrend, error)
	CategoryPerformance(ctx context.Context) ([]database.CategoryPerformance, error)
	GeographicDistribution(ctx context.Context) ([]database.RegionSales, error)
	CustomerMetrics(ctx context.Context) (*database.CustomerMetrics, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ImportController starts imports and reports their progress.
// *services.ImportService implements it.
type ImportController interface {
	Trigger() error
	Status() *pgimport.ProgressSummary
}

// Handler serves the HTTP API.
type Handler struct {
	reports   Reports
	db        Pinger
	imports   ImportController
	startTime time.Time
}

// NewHandler creates a handler. imports may be nil when importing is
// disabled.
func NewHandler(rep Reports, db Pinger, imports ImportController) *Handler {
	return &Handler{
		reports:   rep,
		db:        db,
		imports:   imports,
		startTime: time.Now(),
	}
}

// ---- health ----

type healthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime"`
}

func (h *Handler) dbConnected(ctx context.Context) bool {
	return h.db != nil && h.db.Ping(ctx) == nil
}

// Health reports overall status. It always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.dbConnected(r.Context())
	status := "healthy"
	if !connected {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, healthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: connected,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// HealthLive answers 200 while the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 503 until DuckDB responds.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	connected := h.dbConnected(r.Context())
	status, code := "ready", http.StatusOK
	if !connected {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]any{
		"status":             status,
		"database_connected": connected,
	})
}

// ---- dashboard reports ----

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.Stats(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.TopProducts(r.Context(), getIntParam(r, "limit", defaultTopProducts))
	respondResult(w, r, res, err)
}

func (h *Handler) SalesTrends(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.SalesTrends(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) CategoryPerformance(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.CategoryPerformance(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) GeographicDistribution(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.GeographicDistribution(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) CustomerMetrics(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.CustomerMetrics(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) ExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.ExecutiveSummary(r.Context())
	respondResult(w, r, res, err)
}

// ---- RFM and cohorts ----

func (h *Handler) RFMAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.RFM(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) RFMInsights(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.RFMInsights(r.Context())
	respondResult(w, r, res, err)
}

func (h *Handler) CohortAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.Cohorts(r.Context(), parsePeriod(r))
	respondResult(w, r, res, err)
}

func (h *Handler) CohortInsights(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.CohortInsights(r.Context(), parsePeriod(r))
	respondResult(w, r, res, err)
}

// ---- market basket ----

func (h *Handler) MarketBasket(w http.ResponseWriter, r *http.Request) {
	p := parseBasketParams(r)
	res, err := h.reports.MarketBasket(r.Context(), p.MinSupport, p.MinConfidence)
	respondResult(w, r, res, err)
}

func (h *Handler) TopAssociations(w http.ResponseWriter, r *http.Request) {
	p := parseLimitParams(r, defaultAssociations)
	res, err := h.reports.TopAssociations(r.Context(), p.Limit)
	respondResult(w, r, res, err)
}

func (h *Handler) ProductRecommendations(w http.ResponseWriter, r *http.Request) {
	p := parseLimitParams(r, defaultProductRuleRecs)
	res, err := h.reports.ProductRecommendations(r.Context(), chi.URLParam(r, "product"), p.Limit)
	respondResult(w, r, res, err)
}

func (h *Handler) BasketInsights(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.BasketInsights(r.Context())
	respondResult(w, r, res, err)
}

// CustomerRecommendations serves /api/recommendations/{customer_id}. The
// customer ID is a shipping postal code.
func (h *Handler) CustomerRecommendations(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.CustomerRecommendations(r.Context(), chi.URLParam(r, "customer_id"))
	respondResult(w, r, res, err)
}

// ---- segmentation ----

// CustomerSegments always answers 200; without enough data the body is the
// fallback sample.
func (h *Handler) CustomerSegments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.reports.Segments(r.Context()))
}

func (h *Handler) PredictSegment(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		respondError(w, r, http.StatusBadRequest, verr.Error(), nil)
		return
	}

	res, err := h.reports.PredictSegment(r.Context(), req.input())
	respondResult(w, r, res, err)
}

func (h *Handler) SegmentRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		id = -1
	}
	res, err := h.reports.SegmentRecommendations(id)
	respondResult(w, r, res, err)
}

// ---- forecasting ----

// SalesForecast always answers 200; an untrainable model yields the
// fallback forecast.
func (h *Handler) SalesForecast(w http.ResponseWriter, r *http.Request) {
	p := parseForecastParams(r)
	respondJSON(w, http.StatusOK, h.reports.Forecast(r.Context(), p.Months))
}

func (h *Handler) ModelPerformance(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.ModelPerformance()
	respondResult(w, r, res, err)
}

// ---- import ----

func (h *Handler) ImportStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.imports.Status())
}

// StartImport queues an import run and answers 202, or 409 when one is
// already running.
func (h *Handler) StartImport(w http.ResponseWriter, r *http.Request) {
	if err := h.imports.Trigger(); err != nil {
		if errors.Is(err, pgimport.ErrAlreadyRunning) {
			respondError(w, r, http.StatusConflict, err.Error(), nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, err.Error(), err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
