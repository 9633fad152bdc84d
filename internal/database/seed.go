// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package database

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/tillsight/internal/logging"
)

const (
	seedValue     = 2022
	seedCustomers = 400
)

var (
	seedStart = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedDays  = 181 // through 2022-06-30

	seedCategories = []string{"Set", "Kurta", "Western Dress", "Top", "Ethnic Dress", "Blouse"}
	seedStyles     = []string{"Cotton", "Rayon", "Silk Blend", "Printed", "Embroidered", "Solid", "Floral"}

	seedRegions = []struct{ city, state, prefix string }{
		{"MUMBAI", "MAHARASHTRA", "400"},
		{"PUNE", "MAHARASHTRA", "411"},
		{"BENGALURU", "KARNATAKA", "560"},
		{"HYDERABAD", "TELANGANA", "500"},
		{"CHENNAI", "TAMIL NADU", "600"},
		{"NEW DELHI", "DELHI", "110"},
		{"LUCKNOW", "UTTAR PRADESH", "226"},
		{"KOLKATA", "WEST BENGAL", "700"},
		{"KOCHI", "KERALA", "682"},
		{"JAIPUR", "RAJASTHAN", "302"},
	}
)

// SeedMockData fills an empty store with deterministic demo orders from
// January to June 2022. It does nothing when orders already exist and
// reports whether it wrote anything.
func (db *DB) SeedMockData(ctx context.Context) (bool, error) {
	counts, err := db.TableCounts(ctx)
	if err != nil {
		return false, err
	}
	if counts["amazon_orders"] > 0 {
		logging.Debug().Int64("orders", counts["amazon_orders"]).Msg("Store already has orders, skipping demo seed")
		return false, nil
	}

	products, orders, items := generateSeed()
	if _, err := db.InsertProducts(ctx, products); err != nil {
		return false, fmt.Errorf("seed products: %w", err)
	}
	if _, err := db.InsertOrders(ctx, orders); err != nil {
		return false, fmt.Errorf("seed orders: %w", err)
	}
	if _, err := db.InsertOrderItems(ctx, items); err != nil {
		return false, fmt.Errorf("seed order items: %w", err)
	}

	logging.Info().
		Int("products", len(products)).
		Int("orders", len(orders)).
		Int("order_items", len(items)).
		Msg("Seeded demo data")
	return true, nil
}

type seedProduct struct {
	Product
	price float64
}

// generateSeed builds the demo dataset. Products come in pairs that are
// often bought together so basket mining finds real rules.
func generateSeed() ([]Product, []Order, []OrderItem) {
	rng := rand.New(rand.NewPCG(seedValue, seedValue))

	var catalog []seedProduct
	for c, cat := range seedCategories {
		for s := 0; s < 7; s++ {
			style := seedStyles[(c+s)%len(seedStyles)]
			catalog = append(catalog, seedProduct{
				Product: Product{
					SKU:         fmt.Sprintf("SKU-%02d-%02d", c, s),
					ProductName: fmt.Sprintf("%s %s %d", style, cat, s+1),
					Category:    cat,
				},
				price: math.Round(299 + rng.Float64()*1200),
			})
		}
	}
	products := make([]Product, len(catalog))
	for i, p := range catalog {
		products[i] = p.Product
	}

	var orders []Order
	var items []OrderItem
	for c := 0; c < seedCustomers; c++ {
		region := seedRegions[c%len(seedRegions)]
		postal := fmt.Sprintf("%s%03d", region.prefix, c)

		var n int
		switch tier := rng.Float64(); {
		case tier < 0.1:
			n = 12 + rng.IntN(9)
		case tier < 0.3:
			n = 5 + rng.IntN(5)
		case tier < 0.6:
			n = 3 + rng.IntN(2)
		default:
			n = 1 + rng.IntN(2)
		}
		// all of a customer's orders fall on or after their first day
		first := rng.IntN(seedDays - 7)

		for o := 0; o < n; o++ {
			orderID := fmt.Sprintf("405-%07d-%07d", c, o)
			dayOffset := first + rng.IntN(seedDays-first)
			placed := seedStart.AddDate(0, 0, dayOffset).Add(time.Duration(rng.IntN(24*60)) * time.Minute)
			status := "Shipped"
			if rng.Float64() < 0.08 {
				status = "Cancelled"
			}
			orders = append(orders, Order{
				OrderID:        orderID,
				Date:           placed,
				Status:         status,
				ShipCity:       region.city,
				ShipState:      region.state,
				ShipPostalCode: postal,
				ShipCountry:    "IN",
			})

			chosen := map[int]bool{}
			anchor := rng.IntN(len(catalog))
			chosen[anchor] = true
			if rng.Float64() < 0.55 {
				chosen[anchor^1] = true
			}
			for extra := rng.IntN(3); extra > 0; extra-- {
				chosen[rng.IntN(len(catalog))] = true
			}
			for idx := range catalog {
				if !chosen[idx] {
					continue
				}
				qty := 1 + rng.IntN(2)
				items = append(items, OrderItem{
					OrderID: orderID,
					SKU:     catalog[idx].SKU,
					Qty:     qty,
					Amount:  catalog[idx].price * float64(qty),
				})
			}
		}
	}
	return products, orders, items
}
