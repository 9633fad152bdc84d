// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// SegmentClusters is the fixed number of behavioral segments.
const SegmentClusters = 4

// Cluster labels.
const (
	LabelHighValueLoyal = "High-Value Loyal Customers"
	LabelRegularHighAOV = "Regular Customers with High AOV"
	LabelGrowing        = "Growing Customers"
	LabelNewInfrequent  = "New/Infrequent Customers"
	LabelUnknown        = "Unknown Segment"
)

var clusterLabels = [SegmentClusters]string{
	LabelHighValueLoyal,
	LabelRegularHighAOV,
	LabelGrowing,
	LabelNewInfrequent,
}

// ClusterLabel names a cluster id as the prediction API reports it.
func ClusterLabel(id int) string {
	if id < 0 || id >= SegmentClusters {
		return LabelUnknown
	}
	return clusterLabels[id]
}

// describeCluster labels a cluster by its mean behavior.
func describeCluster(avgOrders, avgSpent, avgOrderValue float64) string {
	switch {
	case avgOrders >= 10 && avgSpent >= 5000:
		return LabelHighValueLoyal
	case avgOrders >= 5 && avgOrderValue >= 500:
		return LabelRegularHighAOV
	case avgOrders >= 3:
		return LabelGrowing
	default:
		return LabelNewInfrequent
	}
}

// SegmentCustomer is one clustered customer.
type SegmentCustomer struct {
	CustomerID          string  `json:"customer_id"`
	TotalOrders         int     `json:"total_orders"`
	TotalQuantity       int     `json:"total_quantity"`
	AvgOrderValue       float64 `json:"avg_order_value"`
	TotalSpent          float64 `json:"total_spent"`
	CategoriesPurchased int     `json:"categories_purchased"`
	LifespanDays        float64 `json:"customer_lifespan_days"`
	AvgOrderFrequency   float64 `json:"avg_order_frequency"`
	AvgQuantityPerOrder float64 `json:"avg_quantity_per_order"`
	Cluster             int     `json:"cluster"`
	PCA1                float64 `json:"pca_1"`
	PCA2                float64 `json:"pca_2"`
}

// ClusterProfile summarizes one cluster. The averages are absent from the
// fallback payload.
type ClusterProfile struct {
	Size            int     `json:"size"`
	AvgTotalOrders  float64 `json:"avg_total_orders,omitempty"`
	AvgTotalSpent   float64 `json:"avg_total_spent,omitempty"`
	AvgOrderValue   float64 `json:"avg_order_value,omitempty"`
	AvgCategories   float64 `json:"avg_categories,omitempty"`
	Characteristics string  `json:"characteristics"`
}

// SegmentSummary counts the segmented population.
type SegmentSummary struct {
	TotalCustomers int `json:"total_customers"`
	Clusters       int `json:"clusters"`
}

// SegmentResult is the output of Segment or SegmentFallback.
type SegmentResult struct {
	Customers       []SegmentCustomer         `json:"customers"`
	ClusterProfiles map[string]ClusterProfile `json:"cluster_profiles"`
	Summary         SegmentSummary            `json:"summary"`
	Fallback        bool                      `json:"fallback,omitempty"`
}

// SegmentModel holds everything needed to place a new customer.
type SegmentModel struct {
	Scaler     scaler       `json:"scaler"`
	KMeans     *kmeansModel `json:"kmeans"`
	Projection *projection  `json:"projection"`
}

// Segment standardizes customer features, clusters them into
// SegmentClusters groups and projects them onto two principal axes.
// Customers without orders are skipped.
func Segment(customers []CustomerFeatures) (*SegmentModel, *SegmentResult, error) {
	var kept []CustomerFeatures
	for _, c := range customers {
		if c.TotalOrders > 0 {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil, nil, empty(MsgNoCustomerData)
	}

	raw := make([][]float64, len(kept))
	for i, c := range kept {
		raw[i] = c.vector()
		for j, v := range raw[i] {
			raw[i][j] = finiteOrZero(v)
		}
	}

	sc := fitScaler(raw)
	scaled := sc.transformAll(raw)

	km, labels, err := fitKMeans(scaled, SegmentClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("cluster customers: %w", err)
	}
	proj, err := fitProjection(scaled)
	if err != nil {
		return nil, nil, fmt.Errorf("project customers: %w", err)
	}

	result := &SegmentResult{
		Customers:       make([]SegmentCustomer, len(kept)),
		ClusterProfiles: make(map[string]ClusterProfile),
	}
	members := make(map[int][]CustomerFeatures)
	for i, c := range kept {
		x, y := proj.project(scaled[i])
		result.Customers[i] = SegmentCustomer{
			CustomerID:          c.CustomerID,
			TotalOrders:         c.TotalOrders,
			TotalQuantity:       c.TotalQuantity,
			AvgOrderValue:       c.AvgOrderValue,
			TotalSpent:          c.TotalSpent,
			CategoriesPurchased: c.CategoriesPurchased,
			LifespanDays:        c.LifespanDays,
			AvgOrderFrequency:   raw[i][4],
			AvgQuantityPerOrder: raw[i][5],
			Cluster:             labels[i],
			PCA1:                x,
			PCA2:                y,
		}
		members[labels[i]] = append(members[labels[i]], c)
	}

	for id, group := range members {
		result.ClusterProfiles[fmt.Sprintf("Cluster_%d", id)] = profile(group)
	}
	result.Summary = SegmentSummary{
		TotalCustomers: len(kept),
		Clusters:       len(members),
	}

	return &SegmentModel{Scaler: sc, KMeans: km, Projection: proj}, result, nil
}

func profile(group []CustomerFeatures) ClusterProfile {
	orders := make([]float64, len(group))
	spent := make([]float64, len(group))
	aov := make([]float64, len(group))
	cats := make([]float64, len(group))
	for i, c := range group {
		orders[i] = float64(c.TotalOrders)
		spent[i] = c.TotalSpent
		aov[i] = c.AvgOrderValue
		cats[i] = float64(c.CategoriesPurchased)
	}
	p := ClusterProfile{
		Size:           len(group),
		AvgTotalOrders: stat.Mean(orders, nil),
		AvgTotalSpent:  stat.Mean(spent, nil),
		AvgOrderValue:  stat.Mean(aov, nil),
		AvgCategories:  stat.Mean(cats, nil),
	}
	p.Characteristics = describeCluster(p.AvgTotalOrders, p.AvgTotalSpent, p.AvgOrderValue)
	return p
}

// SegmentInput is the feature vector of a customer to classify.
type SegmentInput struct {
	TotalOrders         float64 `json:"total_orders"`
	TotalSpent          float64 `json:"total_spent"`
	AvgOrderValue       float64 `json:"avg_order_value"`
	CategoriesPurchased float64 `json:"categories_purchased"`
	AvgOrderFrequency   float64 `json:"avg_order_frequency"`
	AvgQuantityPerOrder float64 `json:"avg_quantity_per_order"`
}

// SegmentPrediction is the cluster chosen for a SegmentInput.
type SegmentPrediction struct {
	PredictedCluster       int    `json:"predicted_cluster"`
	ClusterCharacteristics string `json:"cluster_characteristics"`
}

// Predict places in into the nearest fitted cluster.
func (m *SegmentModel) Predict(in SegmentInput) (*SegmentPrediction, error) {
	if m == nil || m.KMeans == nil {
		return nil, empty(MsgModelNotTrained)
	}
	row := m.Scaler.transform([]float64{
		in.TotalOrders,
		in.TotalSpent,
		in.AvgOrderValue,
		in.CategoriesPurchased,
		in.AvgOrderFrequency,
		in.AvgQuantityPerOrder,
	})
	id := m.KMeans.predict(row)
	return &SegmentPrediction{PredictedCluster: id, ClusterCharacteristics: ClusterLabel(id)}, nil
}

// SegmentFallback is the fixed payload served when segmentation cannot run.
func SegmentFallback() *SegmentResult {
	return &SegmentResult{
		Customers: []SegmentCustomer{
			{CustomerID: "Sample_Customer_1", Cluster: 0, TotalOrders: 15, TotalSpent: 8500.0, AvgOrderValue: 566.67},
			{CustomerID: "Sample_Customer_2", Cluster: 1, TotalOrders: 8, TotalSpent: 3200.0, AvgOrderValue: 400.0},
			{CustomerID: "Sample_Customer_3", Cluster: 2, TotalOrders: 3, TotalSpent: 900.0, AvgOrderValue: 300.0},
			{CustomerID: "Sample_Customer_4", Cluster: 3, TotalOrders: 1, TotalSpent: 150.0, AvgOrderValue: 150.0},
		},
		ClusterProfiles: map[string]ClusterProfile{
			"Cluster_0": {Size: 2500, Characteristics: LabelHighValueLoyal},
			"Cluster_1": {Size: 3200, Characteristics: LabelRegularHighAOV},
			"Cluster_2": {Size: 2800, Characteristics: LabelGrowing},
			"Cluster_3": {Size: 943, Characteristics: LabelNewInfrequent},
		},
		Summary:  SegmentSummary{TotalCustomers: 9443, Clusters: SegmentClusters},
		Fallback: true,
	}
}

// SegmentStrategy is the playbook for one cluster.
type SegmentStrategy struct {
	Strategy        string   `json:"strategy"`
	Recommendations []string `json:"recommendations"`
}

var segmentStrategies = [SegmentClusters]SegmentStrategy{
	{
		Strategy: "Premium retention and upselling",
		Recommendations: []string{
			"Offer exclusive products and early access",
			"Provide personalized product recommendations",
			"Implement loyalty rewards program",
			"Focus on high-margin product categories",
		},
	},
	{
		Strategy: "Increase purchase frequency",
		Recommendations: []string{
			"Send targeted promotional emails",
			"Offer bundle discounts",
			"Recommend complementary products",
			"Implement subscription services",
		},
	},
	{
		Strategy: "Accelerate growth and retention",
		Recommendations: []string{
			"Provide onboarding support",
			"Offer first-time buyer incentives",
			"Send educational content about products",
			"Implement cross-selling strategies",
		},
	},
	{
		Strategy: "Re-engagement and conversion",
		Recommendations: []string{
			"Send win-back campaigns",
			"Offer significant discounts",
			"Provide free shipping incentives",
			"Focus on popular, low-risk products",
		},
	},
}

// SegmentRecommendations returns the playbook for cluster id.
func SegmentRecommendations(id int) (*SegmentStrategy, error) {
	if id < 0 || id >= SegmentClusters {
		return nil, empty(MsgInvalidSegment)
	}
	s := segmentStrategies[id]
	s.Recommendations = append([]string(nil), s.Recommendations...)
	return &s, nil
}
