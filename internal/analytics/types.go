// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import "time"

// DateLayout formats calendar dates in results.
const DateLayout = "2006-01-02"

// OrderLine is one order item attributed to a customer.
type OrderLine struct {
	CustomerID string    `json:"customer_id"`
	OrderDate  time.Time `json:"order_date"`
	Amount     float64   `json:"amount"`
}

// BasketLine pairs an order with one product it contains.
type BasketLine struct {
	OrderID string `json:"order_id"`
	Product string `json:"product"`
}

// CustomerFeatures is the per-customer behavior used for segmentation.
type CustomerFeatures struct {
	CustomerID          string  `json:"customer_id"`
	TotalOrders         int     `json:"total_orders"`
	TotalQuantity       int     `json:"total_quantity"`
	AvgOrderValue       float64 `json:"avg_order_value"`
	TotalSpent          float64 `json:"total_spent"`
	CategoriesPurchased int     `json:"categories_purchased"`
	LifespanDays        float64 `json:"customer_lifespan_days"`
}

// OrderFrequency is orders per day of customer lifespan.
func (c CustomerFeatures) OrderFrequency() float64 {
	return float64(c.TotalOrders) / (c.LifespanDays + 1)
}

// QuantityPerOrder is the mean number of units per order.
func (c CustomerFeatures) QuantityPerOrder() float64 {
	if c.TotalOrders == 0 {
		return 0
	}
	return float64(c.TotalQuantity) / float64(c.TotalOrders)
}

// vector returns the six clustering features in model order.
func (c CustomerFeatures) vector() []float64 {
	return []float64{
		float64(c.TotalOrders),
		c.TotalSpent,
		c.AvgOrderValue,
		float64(c.CategoriesPurchased),
		c.OrderFrequency(),
		c.QuantityPerOrder(),
	}
}

// DailySales is one day of aggregated sales.
type DailySales struct {
	Date           time.Time `json:"date"`
	Orders         int       `json:"orders"`
	Quantity       int       `json:"quantity"`
	Revenue        float64   `json:"revenue"`
	AvgOrderValue  float64   `json:"avg_order_value"`
	CategoriesSold int       `json:"categories_sold"`
}
