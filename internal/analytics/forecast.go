// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ForecastFeatures names the regression inputs in model order.
var ForecastFeatures = []string{
	"day_of_week", "month", "quarter", "day_of_month",
	"is_weekend", "is_month_start", "is_month_end",
	"revenue_lag_1", "revenue_lag_7", "orders_lag_1", "orders_lag_7",
	"revenue_7day_avg", "orders_7day_avg",
}

// Forecast constants.
const (
	DaysPerMonth      = 30
	DefaultMonths     = 3
	lagWindow         = 7
	recentWindow      = 30
	forecastAlgorithm = "Random Forest Regressor"
)

var errNoLagHistory = errors.New("not enough days to build lag features")

// RegressionMetrics are in-sample fit statistics.
type RegressionMetrics struct {
	R2   float64 `json:"r2_score"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// TrainingMetrics covers both regressors.
type TrainingMetrics struct {
	Revenue RegressionMetrics `json:"revenue_model"`
	Orders  RegressionMetrics `json:"orders_model"`
}

// FeatureWeight is one feature's share of a model's importance.
type FeatureWeight struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureImportance lists both models' weights, largest first.
type FeatureImportance struct {
	Revenue []FeatureWeight `json:"revenue_features"`
	Orders  []FeatureWeight `json:"orders_features"`
}

// ForecastModel is a trained pair of regressors plus the recent actuals
// used to derive lag inputs.
type ForecastModel struct {
	Scaler     scaler            `json:"scaler"`
	Revenue    *randomForest     `json:"revenue"`
	Orders     *randomForest     `json:"orders"`
	Recent     []DailySales      `json:"recent"`
	LastDate   time.Time         `json:"last_date"`
	Metrics    TrainingMetrics   `json:"metrics"`
	Importance FeatureImportance `json:"importance"`
	TrainedAt  time.Time         `json:"trained_at"`
}

// calendarFeatures encodes date. Day of week counts from Sunday = 0.
func calendarFeatures(d time.Time) []float64 {
	dow := int(d.Weekday())
	day := d.Day()
	month := int(d.Month())
	return []float64{
		float64(dow),
		float64(month),
		float64((month-1)/3 + 1),
		float64(day),
		boolFloat(dow == 0 || dow == 6),
		boolFloat(day <= 3),
		boolFloat(day >= 28),
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// TrainForecast fits revenue and order regressors on daily history, which
// must be sorted by date. Days without seven prior days of history are
// dropped from training.
func TrainForecast(daily []DailySales, trainedAt time.Time) (*ForecastModel, error) {
	if len(daily) == 0 {
		return nil, empty(MsgNoSalesData)
	}
	var x [][]float64
	var yRev, yOrd []float64
	for i := lagWindow; i < len(daily); i++ {
		prev := daily[i-lagWindow+1 : i+1]
		row := calendarFeatures(daily[i].Date)
		row = append(row,
			daily[i-1].Revenue, daily[i-lagWindow].Revenue,
			float64(daily[i-1].Orders), float64(daily[i-lagWindow].Orders),
			meanRevenue(prev), meanOrders(prev),
		)
		x = append(x, row)
		yRev = append(yRev, daily[i].Revenue)
		yOrd = append(yOrd, float64(daily[i].Orders))
	}
	if len(x) == 0 {
		return nil, errNoLagHistory
	}

	sc := fitScaler(x)
	xs := sc.transformAll(x)
	rev := fitForest(xs, yRev)
	ord := fitForest(xs, yOrd)

	recent := daily[max(0, len(daily)-recentWindow):]
	return &ForecastModel{
		Scaler:   sc,
		Revenue:  rev,
		Orders:   ord,
		Recent:   append([]DailySales(nil), recent...),
		LastDate: daily[len(daily)-1].Date,
		Metrics: TrainingMetrics{
			Revenue: fitMetrics(rev, xs, yRev),
			Orders:  fitMetrics(ord, xs, yOrd),
		},
		Importance: FeatureImportance{
			Revenue: rankFeatures(rev.Importance),
			Orders:  rankFeatures(ord.Importance),
		},
		TrainedAt: trainedAt,
	}, nil
}

func meanRevenue(days []DailySales) float64 {
	v := make([]float64, len(days))
	for i, d := range days {
		v[i] = d.Revenue
	}
	return stat.Mean(v, nil)
}

func meanOrders(days []DailySales) float64 {
	v := make([]float64, len(days))
	for i, d := range days {
		v[i] = float64(d.Orders)
	}
	return stat.Mean(v, nil)
}

func fitMetrics(f *randomForest, x [][]float64, y []float64) RegressionMetrics {
	pred := make([]float64, len(y))
	absErr, sqErr := 0.0, 0.0
	for i, row := range x {
		pred[i] = f.predict(row)
		d := y[i] - pred[i]
		absErr += math.Abs(d)
		sqErr += d * d
	}
	n := float64(len(y))
	return RegressionMetrics{
		R2:   finiteOrZero(stat.RSquaredFrom(pred, y, nil)),
		MAE:  absErr / n,
		RMSE: math.Sqrt(sqErr / n),
	}
}

func rankFeatures(importance []float64) []FeatureWeight {
	out := make([]FeatureWeight, len(importance))
	for i, v := range importance {
		out[i] = FeatureWeight{Feature: ForecastFeatures[i], Importance: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}

// ForecastPoint is one predicted day.
type ForecastPoint struct {
	Date                   string  `json:"date"`
	PredictedRevenue       float64 `json:"predicted_revenue"`
	PredictedOrders        float64 `json:"predicted_orders"`
	PredictedAvgOrderValue float64 `json:"predicted_avg_order_value"`
}

// ForecastSummary totals a forecast.
type ForecastSummary struct {
	TotalPredictedRevenue float64 `json:"total_predicted_revenue"`
	TotalPredictedOrders  float64 `json:"total_predicted_orders"`
	AvgDailyRevenue       float64 `json:"avg_daily_revenue"`
	ForecastPeriodDays    int     `json:"forecast_period_days"`
}

// ForecastResult is the output of Forecast or ForecastFallback.
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Summary     ForecastSummary `json:"summary"`
	Fallback    bool            `json:"fallback,omitempty"`
}

// Forecast predicts the days after the model's last training day. Lag and
// rolling inputs always come from the stored actuals, never from earlier
// predictions.
func (m *ForecastModel) Forecast(days int) (*ForecastResult, error) {
	if m == nil || m.Revenue == nil || len(m.Recent) == 0 {
		return nil, empty(MsgModelNotTrained)
	}
	recent := m.Recent
	last := recent[len(recent)-1]
	lag7 := last
	if len(recent) >= lagWindow {
		lag7 = recent[len(recent)-lagWindow]
	}
	window := recent[max(0, len(recent)-lagWindow):]
	lags := []float64{
		last.Revenue, lag7.Revenue,
		float64(last.Orders), float64(lag7.Orders),
		meanRevenue(window), meanOrders(window),
	}

	points := make([]ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := m.LastDate.AddDate(0, 0, i)
		row := m.Scaler.transform(append(calendarFeatures(date), lags...))
		rev := m.Revenue.predict(row)
		ord := m.Orders.predict(row)
		points = append(points, ForecastPoint{
			Date:                   date.Format(DateLayout),
			PredictedRevenue:       round(rev, 2),
			PredictedOrders:        round(ord, 2),
			PredictedAvgOrderValue: round(rev/math.Max(ord, 1), 2),
		})
	}
	return &ForecastResult{Predictions: points, Summary: summarize(points, days)}, nil
}

func summarize(points []ForecastPoint, days int) ForecastSummary {
	rev, ord := 0.0, 0.0
	for _, p := range points {
		rev += p.PredictedRevenue
		ord += p.PredictedOrders
	}
	s := ForecastSummary{
		TotalPredictedRevenue: round(rev, 2),
		TotalPredictedOrders:  round(ord, 2),
		ForecastPeriodDays:    days,
	}
	if len(points) > 0 {
		s.AvgDailyRevenue = round(rev/float64(len(points)), 2)
	}
	return s
}

// Fallback series constants.
const (
	fallbackRevenue     = 250000.0
	fallbackRevenueStep = 5000.0
	fallbackOrders      = 150.0
	fallbackOrdersStep  = 5.0
	fallbackAOV         = 647.21
	fallbackAOVStep     = 2.0
)

// ForecastFallback is the linear series served when no model can be
// trained. Dates start the day after now.
func ForecastFallback(days int, now time.Time) *ForecastResult {
	points := make([]ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		f := float64(i)
		points = append(points, ForecastPoint{
			Date:                   now.AddDate(0, 0, i).Format(DateLayout),
			PredictedRevenue:       round(fallbackRevenue+fallbackRevenueStep*f, 2),
			PredictedOrders:        round(fallbackOrders+fallbackOrdersStep*f, 2),
			PredictedAvgOrderValue: round(fallbackAOV+fallbackAOVStep*f, 2),
		})
	}
	s := summarize(points, days)
	s.AvgDailyRevenue = fallbackRevenue
	return &ForecastResult{Predictions: points, Summary: s, Fallback: true}
}

// ModelPerformance describes the latest trained forecast model.
type ModelPerformance struct {
	ModelStatus       string            `json:"model_status"`
	Algorithms        []string          `json:"algorithms"`
	FeaturesUsed      int               `json:"features_used"`
	FeatureImportance FeatureImportance `json:"feature_importance"`
	TrainingMetrics   TrainingMetrics   `json:"training_metrics"`
	LastTrained       string            `json:"last_trained"`
}

// Performance reports m's training outcome.
func (m *ForecastModel) Performance() (*ModelPerformance, error) {
	if m == nil {
		return nil, empty(MsgModelNotTrained)
	}
	return &ModelPerformance{
		ModelStatus:       "Trained",
		Algorithms:        []string{forecastAlgorithm},
		FeaturesUsed:      len(ForecastFeatures),
		FeatureImportance: m.Importance,
		TrainingMetrics:   m.Metrics,
		LastTrained:       m.TrainedAt.Format(time.RFC3339),
	}, nil
}
