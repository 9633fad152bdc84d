// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// k-means parameters.
const (
	kmeansSeed    = 42
	kmeansRuns    = 10
	kmeansMaxIter = 300
	kmeansTol     = 1e-4
)

var errTooFewPoints = errors.New("fewer distinct points than clusters")

// kmeansModel is a fitted set of centroids.
type kmeansModel struct {
	Centroids [][]float64 `json:"centroids"`
	Inertia   float64     `json:"inertia"`
}

// fitKMeans partitions points into k clusters. It runs k-means++ seeding
// followed by Lloyd iterations kmeansRuns times from one seeded source and
// keeps the run with the lowest inertia.
func fitKMeans(points [][]float64, k int) (*kmeansModel, []int, error) {
	if distinctPoints(points, k) < k {
		return nil, nil, errTooFewPoints
	}
	rng := rand.New(rand.NewPCG(kmeansSeed, kmeansSeed))

	var best *kmeansModel
	var bestLabels []int
	for run := 0; run < kmeansRuns; run++ {
		centroids := seedPlusPlus(points, k, rng)
		labels, inertia := lloyd(points, centroids)
		if best == nil || inertia < best.Inertia {
			best = &kmeansModel{Centroids: centroids, Inertia: inertia}
			bestLabels = labels
		}
	}
	return best, bestLabels, nil
}

// distinctPoints counts distinct points, stopping once limit is reached.
func distinctPoints(points [][]float64, limit int) int {
	var uniq [][]float64
	for _, p := range points {
		dup := false
		for _, u := range uniq {
			if floats.Equal(p, u) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, p)
			if len(uniq) >= limit {
				break
			}
		}
	}
	return len(uniq)
}

// seedPlusPlus picks k initial centroids, each new one drawn with
// probability proportional to its squared distance from the nearest
// centroid already chosen.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.IntN(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		for i, p := range points {
			dist[i] = nearest(p, centroids).dist
		}
		total := floats.Sum(dist)
		if total == 0 {
			centroids = append(centroids, clone(points[rng.IntN(len(points))]))
			continue
		}
		target := rng.Float64() * total
		idx := len(points) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centroids = append(centroids, clone(points[idx]))
	}
	return centroids
}

type assignment struct {
	cluster int
	dist    float64
}

// nearest returns the closest centroid by squared Euclidean distance.
// Ties go to the lowest index.
func nearest(p []float64, centroids [][]float64) assignment {
	best := assignment{cluster: 0, dist: math.Inf(1)}
	for c, cen := range centroids {
		d := sqDist(p, cen)
		if d < best.dist {
			best = assignment{cluster: c, dist: d}
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

// lloyd refines centroids in place and returns the final labels and
// inertia. An emptied cluster is re-seeded with the point farthest from
// its centroid.
func lloyd(points [][]float64, centroids [][]float64) ([]int, float64) {
	k := len(centroids)
	dim := len(points[0])
	labels := make([]int, len(points))
	dists := make([]float64, len(points))

	for iter := 0; iter < kmeansMaxIter; iter++ {
		for i, p := range points {
			a := nearest(p, centroids)
			labels[i], dists[i] = a.cluster, a.dist
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				far := floats.MaxIdx(dists)
				sums[c] = clone(points[far])
				counts[c] = 1
				dists[far] = 0
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(centroids[c], sums[c])
			centroids[c] = sums[c]
		}
		if shift <= kmeansTol {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		a := nearest(p, centroids)
		labels[i] = a.cluster
		inertia += a.dist
	}
	return labels, inertia
}

// predict assigns p to its nearest centroid.
func (m *kmeansModel) predict(p []float64) int {
	return nearest(p, m.Centroids).cluster
}
