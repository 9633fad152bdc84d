// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		err       error
		wantClass string
	}{
		{name: "success", query: "test_rfm_rows"},
		{name: "timeout", query: "test_cohort_rows", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantClass: "timeout"},
		{name: "breaker open", query: "test_stats", err: errors.New("circuit breaker is open"), wantClass: "circuit_open"},
		{name: "sql", query: "test_trends", err: errors.New("Binder Error: column not found"), wantClass: "sql"},
		{name: "other", query: "test_other", err: errors.New("boom"), wantClass: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryDuration)
			RecordDBQuery(tt.query, 10*time.Millisecond, tt.err)

			if tt.err == nil {
				if after := testutil.CollectAndCount(DBQueryDuration); after != before+1 {
					t.Errorf("expected a new histogram series, got %d -> %d", before, after)
				}
				return
			}
			if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.query, tt.wantClass)); got != 1 {
				t.Errorf("DBQueryErrors{%s,%s} = %v, want 1", tt.query, tt.wantClass, got)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("GET", "/api/test-endpoint", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/api/test-endpoint", "200", 30*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/test-endpoint", "200")); got != 2 {
		t.Errorf("APIRequestsTotal = %v, want 2", got)
	}

	m := &dto.Metric{}
	obs, ok := APIRequestDuration.WithLabelValues("GET", "/api/test-endpoint").(interface{ Write(*dto.Metric) error })
	if !ok {
		t.Fatal("histogram does not expose Write")
	}
	if err := obs.Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("APIActiveRequests = %v, want %v", got, start+1)
	}
	TrackActiveRequest(false)
}

func TestRecordAnalysis(t *testing.T) {
	RecordAnalysis("test-engine", "fallback", time.Millisecond)
	if got := testutil.ToFloat64(AnalysisOutcomes.WithLabelValues("test-engine", "fallback")); got != 1 {
		t.Errorf("AnalysisOutcomes = %v, want 1", got)
	}
}

func TestRecordTraining(t *testing.T) {
	RecordTraining("test-model-failed", time.Second, errors.New("no rows"))
	if got := testutil.ToFloat64(ModelLastTrained.WithLabelValues("test-model-failed")); got != 0 {
		t.Errorf("failed training must not set last-trained, got %v", got)
	}

	RecordTraining("test-model", time.Second, nil)
	if got := testutil.ToFloat64(ModelLastTrained.WithLabelValues("test-model")); got < float64(time.Now().Add(-time.Minute).Unix()) {
		t.Errorf("last-trained gauge not set, got %v", got)
	}
}
