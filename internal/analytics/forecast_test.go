// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func syntheticDaily(n int) []DailySales {
	start := day("2022-03-01")
	out := make([]DailySales, n)
	for i := range out {
		d := start.AddDate(0, 0, i)
		orders := 100 + i%7*10
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			orders += 40
		}
		rev := float64(orders) * 650
		out[i] = DailySales{Date: d, Orders: orders, Quantity: orders + 5, Revenue: rev, AvgOrderValue: 650, CategoriesSold: 8}
	}
	return out
}

func TestForecast_OneMonth(t *testing.T) {
	t.Parallel()

	trained := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, err := TrainForecast(syntheticDaily(90), trained)
	if err != nil {
		t.Fatalf("TrainForecast() error = %v", err)
	}

	res, err := m.Forecast(1 * DaysPerMonth)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(res.Predictions) != 30 {
		t.Fatalf("len(Predictions) = %d, want 30", len(res.Predictions))
	}
	if res.Fallback {
		t.Error("trained forecast marked as fallback")
	}

	sum := 0.0
	for _, p := range res.Predictions {
		sum += p.PredictedRevenue
		if p.PredictedRevenue <= 0 || p.PredictedOrders <= 0 {
			t.Errorf("non-positive prediction %+v", p)
		}
	}
	if math.Abs(sum-res.Summary.TotalPredictedRevenue) > 0.01 {
		t.Errorf("sum of predictions %v != total %v", sum, res.Summary.TotalPredictedRevenue)
	}
	if res.Summary.ForecastPeriodDays != 30 {
		t.Errorf("ForecastPeriodDays = %d", res.Summary.ForecastPeriodDays)
	}
	// last training day is 2022-05-29
	if res.Predictions[0].Date != "2022-05-30" {
		t.Errorf("first forecast date = %s, want 2022-05-30", res.Predictions[0].Date)
	}

	if r2 := m.Metrics.Revenue.R2; r2 < 0.5 {
		t.Errorf("in-sample revenue R2 = %v, want a reasonable fit", r2)
	}

	perf, err := m.Performance()
	if err != nil {
		t.Fatalf("Performance() error = %v", err)
	}
	if perf.FeaturesUsed != len(ForecastFeatures) || perf.LastTrained != "2026-01-01T00:00:00Z" {
		t.Errorf("Performance() = %+v", perf)
	}
	imp := 0.0
	for i, w := range perf.FeatureImportance.Revenue {
		imp += w.Importance
		if i > 0 && w.Importance > perf.FeatureImportance.Revenue[i-1].Importance {
			t.Error("feature importance not sorted")
		}
	}
	if math.Abs(imp-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", imp)
	}
}

func TestForecast_Deterministic(t *testing.T) {
	t.Parallel()

	a, _ := TrainForecast(syntheticDaily(40), time.Time{})
	b, _ := TrainForecast(syntheticDaily(40), time.Time{})
	fa, _ := a.Forecast(10)
	fb, _ := b.Forecast(10)
	if !reflect.DeepEqual(fa, fb) {
		t.Error("forecast is not reproducible")
	}
}

func TestTrainForecast_Insufficient(t *testing.T) {
	t.Parallel()

	if _, err := TrainForecast(nil, time.Now()); !IsEmpty(err) {
		t.Errorf("TrainForecast(nil) error = %v, want empty", err)
	}
	if _, err := TrainForecast(syntheticDaily(7), time.Now()); err == nil {
		t.Error("seven days leave no lagged rows, expected an error")
	}

	var m *ForecastModel
	if _, err := m.Performance(); !IsEmpty(err) {
		t.Errorf("nil model Performance() error = %v", err)
	}
}

func TestForecastFallback(t *testing.T) {
	t.Parallel()

	now := day("2024-01-31")
	fb := ForecastFallback(30, now)
	if !fb.Fallback || len(fb.Predictions) != 30 {
		t.Fatalf("fallback = %d points, flag %v", len(fb.Predictions), fb.Fallback)
	}
	first := fb.Predictions[0]
	if first.Date != "2024-02-01" || first.PredictedRevenue != 255000 || first.PredictedOrders != 155 || first.PredictedAvgOrderValue != 649.21 {
		t.Errorf("first point = %+v", first)
	}
	if fb.Summary.AvgDailyRevenue != 250000 {
		t.Errorf("AvgDailyRevenue = %v, want 250000", fb.Summary.AvgDailyRevenue)
	}
	// sum of 250000 + 5000i for i in 1..30
	if fb.Summary.TotalPredictedRevenue != 9825000 {
		t.Errorf("TotalPredictedRevenue = %v", fb.Summary.TotalPredictedRevenue)
	}
}

func TestCalendarFeatures(t *testing.T) {
	t.Parallel()

	// 2022-05-29 is a Sunday.
	got := calendarFeatures(day("2022-05-29"))
	want := []float64{0, 5, 2, 29, 1, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("calendarFeatures() = %v, want %v", got, want)
	}
}
