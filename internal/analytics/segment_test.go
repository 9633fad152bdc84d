// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"fmt"
	"reflect"
	"testing"
)

// groupedCustomers returns four well separated behavior groups.
func groupedCustomers() []CustomerFeatures {
	groups := []CustomerFeatures{
		{TotalOrders: 14, TotalQuantity: 30, AvgOrderValue: 650, TotalSpent: 9000, CategoriesPurchased: 6, LifespanDays: 110},
		{TotalOrders: 7, TotalQuantity: 9, AvgOrderValue: 900, TotalSpent: 6000, CategoriesPurchased: 3, LifespanDays: 80},
		{TotalOrders: 3, TotalQuantity: 4, AvgOrderValue: 300, TotalSpent: 900, CategoriesPurchased: 2, LifespanDays: 40},
		{TotalOrders: 1, TotalQuantity: 1, AvgOrderValue: 200, TotalSpent: 200, CategoriesPurchased: 1, LifespanDays: 0},
	}
	var out []CustomerFeatures
	for g, base := range groups {
		for i := 0; i < 10; i++ {
			c := base
			c.CustomerID = fmt.Sprintf("%d%05d", g, i)
			c.TotalSpent += float64(i * 5)
			c.AvgOrderValue += float64(i)
			out = append(out, c)
		}
	}
	out = append(out, CustomerFeatures{CustomerID: "no-orders"})
	return out
}

func TestSegment_FourClusters(t *testing.T) {
	t.Parallel()

	model, res, err := Segment(groupedCustomers())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if res.Summary.Clusters != SegmentClusters || len(res.ClusterProfiles) != SegmentClusters {
		t.Fatalf("clusters = %d, profiles = %d, want 4", res.Summary.Clusters, len(res.ClusterProfiles))
	}
	if res.Summary.TotalCustomers != 40 {
		t.Errorf("TotalCustomers = %d, want 40 (zero-order customer excluded)", res.Summary.TotalCustomers)
	}

	// Each generated group must land in a single cluster.
	groupCluster := map[byte]int{}
	for _, c := range res.Customers {
		g := c.CustomerID[0]
		if prev, ok := groupCluster[g]; ok && prev != c.Cluster {
			t.Errorf("group %c split across clusters %d and %d", g, prev, c.Cluster)
		}
		groupCluster[g] = c.Cluster
	}

	labels := map[string]bool{}
	for _, p := range res.ClusterProfiles {
		if p.Size != 10 {
			t.Errorf("profile %+v size, want 10", p)
		}
		labels[p.Characteristics] = true
	}
	for _, want := range clusterLabels {
		if !labels[want] {
			t.Errorf("no cluster labelled %q", want)
		}
	}

	pred, err := model.Predict(SegmentInput{
		TotalOrders: 14, TotalSpent: 9010, AvgOrderValue: 652,
		CategoriesPurchased: 6, AvgOrderFrequency: 14.0 / 111, AvgQuantityPerOrder: 30.0 / 14,
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.PredictedCluster != groupCluster['0'] {
		t.Errorf("PredictedCluster = %d, want %d", pred.PredictedCluster, groupCluster['0'])
	}
	if pred.ClusterCharacteristics != ClusterLabel(pred.PredictedCluster) {
		t.Errorf("ClusterCharacteristics = %q", pred.ClusterCharacteristics)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	t.Parallel()

	_, a, err := Segment(groupedCustomers())
	if err != nil {
		t.Fatal(err)
	}
	_, b, _ := Segment(groupedCustomers())
	if !reflect.DeepEqual(a, b) {
		t.Error("segmentation is not reproducible")
	}
}

func TestSegment_InsufficientData(t *testing.T) {
	t.Parallel()

	if _, _, err := Segment(nil); !IsEmpty(err) {
		t.Errorf("Segment(nil) error = %v, want empty", err)
	}

	same := []CustomerFeatures{
		{CustomerID: "a", TotalOrders: 1, TotalSpent: 10},
		{CustomerID: "b", TotalOrders: 1, TotalSpent: 10},
	}
	if _, _, err := Segment(same); err == nil || IsEmpty(err) {
		t.Errorf("Segment(two identical) error = %v, want a clustering error", err)
	}
}

func TestSegmentFallback(t *testing.T) {
	t.Parallel()

	fb := SegmentFallback()
	if !fb.Fallback || len(fb.Customers) != 4 || fb.Summary.TotalCustomers != 9443 {
		t.Errorf("fallback = %+v", fb.Summary)
	}
	total := 0
	for _, p := range fb.ClusterProfiles {
		total += p.Size
	}
	if total != 9443 {
		t.Errorf("profile sizes sum to %d, want 9443", total)
	}
}

func TestSegmentRecommendations(t *testing.T) {
	t.Parallel()

	for id := 0; id < SegmentClusters; id++ {
		s, err := SegmentRecommendations(id)
		if err != nil || s.Strategy == "" || len(s.Recommendations) != 4 {
			t.Errorf("SegmentRecommendations(%d) = %+v, %v", id, s, err)
		}
	}
	for _, id := range []int{-1, 4, 99} {
		if _, err := SegmentRecommendations(id); !IsEmpty(err) {
			t.Errorf("SegmentRecommendations(%d) error = %v, want %q", id, err, MsgInvalidSegment)
		}
	}
}

func TestDescribeCluster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		orders, spent, aov float64
		want               string
	}{
		{10, 5000, 0, LabelHighValueLoyal},
		{10, 4999, 500, LabelRegularHighAOV},
		{5, 100, 499, LabelGrowing},
		{2.9, 100000, 1000, LabelNewInfrequent},
	}
	for _, tt := range tests {
		if got := describeCluster(tt.orders, tt.spent, tt.aov); got != tt.want {
			t.Errorf("describeCluster(%v, %v, %v) = %q, want %q", tt.orders, tt.spent, tt.aov, got, tt.want)
		}
	}
}
