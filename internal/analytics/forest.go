// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Random forest parameters.
const (
	forestTrees = 100
	forestSeed  = 42
)

// treeNode is a split (Feature >= 0) or a leaf.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// regressionTree is a fully grown CART tree minimizing squared error.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// randomForest averages bootstrap-trained regression trees.
type randomForest struct {
	Trees      []*regressionTree `json:"trees"`
	Importance []float64         `json:"importance"`
}

// fitForest trains forestTrees trees on bootstrap resamples of (x, y).
// Every split considers all features. Importance is mean decrease in
// impurity, normalized to sum to 1.
func fitForest(x [][]float64, y []float64) *randomForest {
	rng := rand.New(rand.NewPCG(forestSeed, forestSeed))
	width := len(x[0])
	f := &randomForest{
		Trees:      make([]*regressionTree, forestTrees),
		Importance: make([]float64, width),
	}

	for t := range f.Trees {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.IntN(len(x))
		}
		b := &treeBuilder{x: x, y: y, gain: make([]float64, width)}
		b.grow(sample)
		f.Trees[t] = &regressionTree{Nodes: b.nodes}

		if total := floats.Sum(b.gain); total > 0 {
			floats.AddScaled(f.Importance, 1/total, b.gain)
		}
	}
	if total := floats.Sum(f.Importance); total > 0 {
		floats.Scale(1/total, f.Importance)
	}
	return f
}

func (f *randomForest) predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

type treeBuilder struct {
	x     [][]float64
	y     []float64
	nodes []treeNode
	gain  []float64
}

// grow adds the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	node := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: -1, Value: sum / n})

	parentSSE := sumSq - sum*sum/n
	if len(idx) < 2 || parentSSE <= 1e-12 {
		return node
	}

	feature, threshold, bestSSE := -1, 0.0, parentSSE
	order := append([]int(nil), idx...)
	for j := range b.x[0] {
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][j] < b.x[order[c]][j] })
		ls, lsq := 0.0, 0.0
		for k := 0; k < len(order)-1; k++ {
			v := b.y[order[k]]
			ls += v
			lsq += v * v
			cur, next := b.x[order[k]][j], b.x[order[k+1]][j]
			if cur == next {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			rs, rsq := sum-ls, sumSq-lsq
			sse := (lsq - ls*ls/nl) + (rsq - rs*rs/nr)
			if sse < bestSSE-1e-12 {
				feature, threshold, bestSSE = j, (cur+next)/2, sse
			}
		}
	}
	if feature < 0 {
		return node
	}
	b.gain[feature] += parentSSE - bestSSE

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.grow(left)
	r := b.grow(right)
	b.nodes[node].Feature = feature
	b.nodes[node].Threshold = threshold
	b.nodes[node].Left = l
	b.nodes[node].Right = r
	return node
}
