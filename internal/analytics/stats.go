// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantileBins holds the four interior cut points of an equal-frequency
// five-way split.
type quantileBins [4]float64

// newQuantileBins computes cut points at the 20th, 40th, 60th and 80th
// percentiles of values. values must be non-empty.
func newQuantileBins(values []float64) quantileBins {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var b quantileBins
	for i := range b {
		b[i] = stat.Quantile(float64(i+1)/5, stat.Empirical, sorted, nil)
	}
	return b
}

// bin returns 1..5. A value equal to a cut point falls in the lower bin.
func (b quantileBins) bin(v float64) int {
	for i, edge := range b {
		if v <= edge {
			return i + 1
		}
	}
	return 5
}

// scaler standardizes columns to zero mean and unit (population) variance.
type scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// fitScaler fits per-column statistics on rows (all the same width).
func fitScaler(rows [][]float64) scaler {
	width := len(rows[0])
	s := scaler{Mean: make([]float64, width), Std: make([]float64, width)}
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
	}
	return s
}

// transform returns a standardized copy of row. Constant columns map to 0.
func (s scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if s.Std[j] == 0 || math.IsNaN(s.Std[j]) {
			out[j] = 0
			continue
		}
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s scaler) transformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.transform(r)
	}
	return out
}

// round rounds half away from zero to n decimal places.
func round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

// finiteOrZero maps NaN and ±Inf to 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
