// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var errPCA = errors.New("principal component analysis did not converge")

// projection maps standardized rows onto their first two principal axes.
type projection struct {
	Mean       []float64    `json:"mean"`
	Components [2][]float64 `json:"components"`
}

// fitProjection computes a two component PCA over rows. Each axis is signed
// so its largest loading is positive, which keeps the plot orientation
// stable across refits.
func fitProjection(rows [][]float64) (*projection, error) {
	n, dim := len(rows), len(rows[0])
	if n < 2 || dim < 2 {
		return nil, errPCA
	}
	x := mat.NewDense(n, dim, nil)
	for i, r := range rows {
		x.SetRow(i, r)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return nil, errPCA
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	if _, c := vecs.Dims(); c < 2 {
		return nil, errPCA
	}

	p := &projection{Mean: make([]float64, dim)}
	for j := 0; j < dim; j++ {
		p.Mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	for c := 0; c < 2; c++ {
		axis := mat.Col(nil, c, &vecs)
		maxAbs, sign := 0.0, 1.0
		for _, v := range axis {
			if math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				sign = math.Copysign(1, v)
			}
		}
		for j := range axis {
			axis[j] *= sign
		}
		p.Components[c] = axis
	}
	return p, nil
}

// project returns row's coordinates on the two axes.
func (p *projection) project(row []float64) (float64, float64) {
	var out [2]float64
	for c, axis := range p.Components {
		for j, v := range row {
			out[c] += (v - p.Mean[j]) * axis[j]
		}
	}
	return out[0], out[1]
}
