// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

/*
Package api serves Tillsight's reports over HTTP using the chi router.

Every response body is JSON. Report handlers answer with the raw report
payload; the status code follows three rules:

  - 200 with the report on success
  - 200 with {"error": reason} when the analysis had no data to work with
  - 500 with {"error": message} for any other failure, including panics

Invalid query parameters never fail a request. They are replaced with their
defaults (min_support 0.01, min_confidence 0.3, months 3, period month).
The only 400 is a malformed body on POST /api/customer-segments/predict.

Middleware, outermost first: request ID with logging context, real IP,
JSON panic recovery, CORS, security headers. Routes under /api are also
rate limited per client IP (go-chi/httprate) and instrumented with
Prometheus metrics.
*/
package api
