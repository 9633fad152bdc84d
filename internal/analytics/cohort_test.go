// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"reflect"
	"testing"
)

func cohortLines() []OrderLine {
	return []OrderLine{
		{CustomerID: "A", OrderDate: day("2022-01-05"), Amount: 10},
		{CustomerID: "A", OrderDate: day("2022-02-10"), Amount: 10},
		{CustomerID: "B", OrderDate: day("2022-01-20"), Amount: 10},
		{CustomerID: "C", OrderDate: day("2022-02-01"), Amount: 10},
		{CustomerID: "C", OrderDate: day("2022-03-15"), Amount: 10},
		{CustomerID: "Z", OrderDate: day("2021-12-31"), Amount: 10},
	}
}

func TestCohorts_Monthly(t *testing.T) {
	t.Parallel()

	res, err := Cohorts(cohortLines(), day("2022-01-01"), PeriodMonth)
	if err != nil {
		t.Fatalf("Cohorts() error = %v", err)
	}

	if want := []string{"2022-01", "2022-02", "2022-03"}; !reflect.DeepEqual(res.OrderPeriods, want) {
		t.Errorf("OrderPeriods = %v, want %v", res.OrderPeriods, want)
	}
	if res.TotalCohorts != 2 {
		t.Fatalf("TotalCohorts = %d, want 2", res.TotalCohorts)
	}

	jan := res.CohortData[0]
	if jan.CohortPeriod != "2022-01" || jan.CohortSize != 2 {
		t.Errorf("first cohort = %s size %d", jan.CohortPeriod, jan.CohortSize)
	}
	wantJan := []float64{1, 0.5, 0}
	for i, r := range jan.RetentionRates {
		if r.RetentionRate != wantJan[i] {
			t.Errorf("jan[%s] = %v, want %v", r.OrderPeriod, r.RetentionRate, wantJan[i])
		}
	}

	feb := res.CohortData[1]
	if feb.RetentionRates[0].RetentionRate != 0 || feb.RetentionRates[1].RetentionRate != 1 {
		t.Errorf("feb cohort rates = %+v", feb.RetentionRates)
	}

	wantAvg := []OffsetRetention{{0, 1}, {1, 0.75}, {2, 0}}
	if !reflect.DeepEqual(res.AvgRetention, wantAvg) {
		t.Errorf("AvgRetention = %+v, want %+v", res.AvgRetention, wantAvg)
	}
}

func TestCohorts_OwnPeriodIsFull(t *testing.T) {
	t.Parallel()

	for _, p := range []Period{PeriodMonth, PeriodWeek} {
		t.Run(string(p), func(t *testing.T) {
			res, err := Cohorts(cohortLines(), day("2022-01-01"), p)
			if err != nil {
				t.Fatalf("Cohorts() error = %v", err)
			}
			for _, row := range res.CohortData {
				for _, r := range row.RetentionRates {
					if r.RetentionRate < 0 || r.RetentionRate > 1 {
						t.Fatalf("rate %v outside [0,1]", r.RetentionRate)
					}
					if r.OrderPeriod == row.CohortPeriod && r.RetentionRate != 1 {
						t.Errorf("cohort %s own-period retention = %v, want 1", row.CohortPeriod, r.RetentionRate)
					}
				}
			}
			if res.AvgRetention[0].AvgRetention != 1 {
				t.Errorf("offset 0 retention = %v, want 1", res.AvgRetention[0].AvgRetention)
			}
		})
	}
}

func TestCohorts_WeekLabels(t *testing.T) {
	t.Parallel()

	// 2022-01-05 is a Wednesday.
	res, err := Cohorts(cohortLines()[:1], day("2022-01-01"), PeriodWeek)
	if err != nil {
		t.Fatalf("Cohorts() error = %v", err)
	}
	if got := res.CohortPeriods[0]; got != "2022-01-03/2022-01-09" {
		t.Errorf("week label = %q", got)
	}
}

func TestCohorts_Empty(t *testing.T) {
	t.Parallel()

	_, err := Cohorts(cohortLines(), day("2023-01-01"), PeriodMonth)
	if !IsEmpty(err) {
		t.Errorf("expected empty error, got %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	tests := map[string]Period{
		"week":  PeriodWeek,
		"WEEK":  PeriodWeek,
		"month": PeriodMonth,
		"":      PeriodMonth,
		"daily": PeriodMonth,
	}
	for in, want := range tests {
		if got := ParsePeriod(in); got != want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCohortInsights(t *testing.T) {
	t.Parallel()

	res := &CohortResult{AvgRetention: []OffsetRetention{{0, 1}, {1, 0.25}, {2, 0.2}, {3, 0.1}}}
	ins := BuildCohortInsights(res)

	if ins.KeyMetrics.AvgFirstPeriodRetention != 25 || ins.KeyMetrics.AvgThirdPeriodRetention != 10 {
		t.Errorf("KeyMetrics = %+v", ins.KeyMetrics)
	}
	if ins.KeyMetrics.RetentionTrend != "declining" {
		t.Errorf("RetentionTrend = %q, want declining", ins.KeyMetrics.RetentionTrend)
	}
	if len(ins.Recommendations) != 5 {
		t.Errorf("Recommendations = %v, want 2 conditional + 3 fixed", ins.Recommendations)
	}
	if len(ins.RetentionTrends) != 4 {
		t.Errorf("RetentionTrends = %d, want 4", len(ins.RetentionTrends))
	}
}
