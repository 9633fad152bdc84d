// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import "errors"

// Messages reported for empty inputs.
const (
	MsgNoCustomerData     = "No customer data available"
	MsgNoFrequentItemsets = "No frequent itemsets found with given support"
	MsgNoTransactions     = "No multi-item transactions available"
	MsgNoPurchaseHistory  = "No purchase history found for customer"
	MsgNoRecommendations  = "No recommendations available"
	MsgNoSalesData        = "No sales data available for training"
	MsgNoRules            = "No rules found. Run analysis first."
	MsgInvalidSegment     = "Invalid segment ID"
	MsgModelNotTrained    = "Model not trained yet"
)

// EmptyError reports that an engine ran but had nothing to analyze.
type EmptyError struct {
	Reason string
}

func (e *EmptyError) Error() string {
	return e.Reason
}

func empty(reason string) error {
	return &EmptyError{Reason: reason}
}

// EmptyReason returns the reason when err is (or wraps) an *EmptyError.
func EmptyReason(err error) (string, bool) {
	var e *EmptyError
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}

// IsEmpty reports whether err is (or wraps) an *EmptyError.
func IsEmpty(err error) bool {
	_, ok := EmptyReason(err)
	return ok
}
