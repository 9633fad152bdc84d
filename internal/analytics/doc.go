// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package analytics implements the reporting engines that turn raw order rows
into analysis artifacts.

Every engine is a pure function of its input rows (plus a fixed random seed
where one is needed), so running it twice on the same rows yields identical
output. Engines never touch the database and never log.

# Engines

  - RFM: recency/frequency/monetary quintile scores and named segments
  - Cohort: first-purchase cohorts and a retention matrix
  - MarketBasket: Apriori frequent itemsets and association rules
  - Segmentation: k-means (k=4) over behavioral features with a 2-D PCA projection
  - Forecast: random-forest regression of daily revenue and order count

# Results

Engines return (result, error). An input with nothing to analyze yields an
*EmptyError, which callers surface as a normal {"error": "..."} payload rather
than a failure:

	res, err := analytics.RFM(rows, ref)
	if reason, ok := analytics.EmptyReason(err); ok {
	    // 200 {"error": reason}
	}

Segmentation and forecasting never fail from the caller's point of view:
SegmentFallback and ForecastFallback build the fixed payloads used when a model
cannot be trained.

# Customer identity

Customers are keyed by shipping postal code. This is a proxy: several real
customers can share one postal code and are then analyzed as one.
*/
package analytics
