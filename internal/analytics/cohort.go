// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"sort"
	"strings"
	"time"
)

// Period is a cohort bucket granularity.
type Period string

// Supported cohort granularities.
const (
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
)

// ParsePeriod maps "week" (any case) to PeriodWeek and anything else to PeriodMonth.
func ParsePeriod(s string) Period {
	if strings.EqualFold(strings.TrimSpace(s), string(PeriodWeek)) {
		return PeriodWeek
	}
	return PeriodMonth
}

// start truncates t to the first day of its month, or the Monday of its week.
func (p Period) start(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if p == PeriodWeek {
		return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	}
	return d.AddDate(0, 0, 1-d.Day())
}

func (p Period) next(t time.Time) time.Time {
	if p == PeriodWeek {
		return t.AddDate(0, 0, 7)
	}
	return t.AddDate(0, 1, 0)
}

// label formats a bucket start: "2022-01" for months, "2022-01-03/2022-01-09" for weeks.
func (p Period) label(t time.Time) string {
	if p == PeriodWeek {
		return t.Format(DateLayout) + "/" + t.AddDate(0, 0, 6).Format(DateLayout)
	}
	return t.Format("2006-01")
}

// CohortRetention is one cell of a cohort's retention row.
type CohortRetention struct {
	OrderPeriod   string  `json:"order_period"`
	RetentionRate float64 `json:"retention_rate"`
}

// CohortRow is one first-purchase cohort.
type CohortRow struct {
	CohortPeriod   string            `json:"cohort_period"`
	CohortSize     int               `json:"cohort_size"`
	RetentionRates []CohortRetention `json:"retention_rates"`
}

// OffsetRetention is the mean retention N periods after first purchase.
type OffsetRetention struct {
	Period       int     `json:"period"`
	AvgRetention float64 `json:"avg_retention"`
}

// CohortResult is the output of Cohorts.
type CohortResult struct {
	Granularity   Period            `json:"granularity"`
	CohortData    []CohortRow       `json:"cohort_data"`
	AvgRetention  []OffsetRetention `json:"avg_retention"`
	CohortPeriods []string          `json:"cohort_periods"`
	OrderPeriods  []string          `json:"order_periods"`
	TotalCohorts  int               `json:"total_cohorts"`
}

// Cohorts groups customers by the period of their first order on or after
// start and measures, for every calendar period, the fraction of each cohort
// that ordered in it.
//
// Calendar periods run contiguously from the earliest to the latest bucket,
// so a period with no orders still gets a column. A cohort's own period is
// always 1.0 and periods before it are 0. AvgRetention is indexed by offset
// from the cohort period and averages every cohort that has reached that
// offset within the observed range.
func Cohorts(lines []OrderLine, start time.Time, period Period) (*CohortResult, error) {
	first := make(map[string]time.Time)
	active := make(map[string]map[time.Time]struct{})
	for _, l := range lines {
		if l.CustomerID == "" || l.OrderDate.Before(start) {
			continue
		}
		b := period.start(l.OrderDate)
		if f, ok := first[l.CustomerID]; !ok || b.Before(f) {
			first[l.CustomerID] = b
		}
		set, ok := active[l.CustomerID]
		if !ok {
			set = make(map[time.Time]struct{})
			active[l.CustomerID] = set
		}
		set[b] = struct{}{}
	}
	if len(first) == 0 {
		return nil, empty(MsgNoCustomerData)
	}

	var lo, hi time.Time
	for _, set := range active {
		for b := range set {
			if lo.IsZero() || b.Before(lo) {
				lo = b
			}
			if b.After(hi) {
				hi = b
			}
		}
	}

	var periods []time.Time
	index := make(map[time.Time]int)
	for b := lo; !b.After(hi); b = period.next(b) {
		index[b] = len(periods)
		periods = append(periods, b)
	}

	// counts[cohort column][order column] = distinct active customers
	sizes := make(map[int]int)
	counts := make(map[int][]int)
	for id, f := range first {
		c := index[f]
		sizes[c]++
		row, ok := counts[c]
		if !ok {
			row = make([]int, len(periods))
			counts[c] = row
		}
		for b := range active[id] {
			row[index[b]]++
		}
	}

	cohortCols := make([]int, 0, len(sizes))
	for c := range sizes {
		cohortCols = append(cohortCols, c)
	}
	sort.Ints(cohortCols)

	res := &CohortResult{
		Granularity:   period,
		CohortData:    make([]CohortRow, len(cohortCols)),
		CohortPeriods: make([]string, len(cohortCols)),
		OrderPeriods:  make([]string, len(periods)),
		TotalCohorts:  len(cohortCols),
	}
	for j, b := range periods {
		res.OrderPeriods[j] = period.label(b)
	}

	rates := make([][]float64, len(cohortCols))
	for i, c := range cohortCols {
		size := sizes[c]
		row := CohortRow{
			CohortPeriod:   period.label(periods[c]),
			CohortSize:     size,
			RetentionRates: make([]CohortRetention, len(periods)),
		}
		rates[i] = make([]float64, len(periods))
		for j := range periods {
			rate := 0.0
			if size > 0 {
				rate = finiteOrZero(float64(counts[c][j]) / float64(size))
			}
			rate = clamp01(rate)
			rates[i][j] = rate
			row.RetentionRates[j] = CohortRetention{OrderPeriod: res.OrderPeriods[j], RetentionRate: round(rate, 3)}
		}
		res.CohortData[i] = row
		res.CohortPeriods[i] = row.CohortPeriod
	}

	for k := 0; k < len(periods); k++ {
		sum, n := 0.0, 0
		for i, c := range cohortCols {
			if c+k >= len(periods) {
				continue
			}
			sum += rates[i][c+k]
			n++
		}
		if n == 0 {
			break
		}
		res.AvgRetention = append(res.AvgRetention, OffsetRetention{Period: k, AvgRetention: round(sum/float64(n), 3)})
	}

	return res, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// RetentionTrend is one point of the retention curve.
type RetentionTrend struct {
	Period        int     `json:"period"`
	RetentionRate float64 `json:"retention_rate"`
}

// CohortKeyMetrics holds first- and third-period retention as percentages.
type CohortKeyMetrics struct {
	AvgFirstPeriodRetention float64 `json:"avg_first_period_retention"`
	AvgThirdPeriodRetention float64 `json:"avg_third_period_retention"`
	RetentionTrend          string  `json:"retention_trend"`
}

// CohortInsights summarizes a cohort result for dashboards.
type CohortInsights struct {
	RetentionTrends []RetentionTrend `json:"retention_trends"`
	KeyMetrics      CohortKeyMetrics `json:"key_metrics"`
	Recommendations []string         `json:"recommendations"`
}

// BuildCohortInsights reports the first six offsets of the retention curve
// and flags weak early or mid-term retention.
func BuildCohortInsights(res *CohortResult) *CohortInsights {
	ins := &CohortInsights{RetentionTrends: []RetentionTrend{}}
	for i, a := range res.AvgRetention {
		if i == 6 {
			break
		}
		ins.RetentionTrends = append(ins.RetentionTrends, RetentionTrend{Period: a.Period, RetentionRate: a.AvgRetention})
	}

	at := func(k int) float64 {
		if k < len(res.AvgRetention) {
			return res.AvgRetention[k].AvgRetention
		}
		return 0
	}
	first, third := at(1), at(3)

	trend := "declining"
	if third > first {
		trend = "improving"
	}
	ins.KeyMetrics = CohortKeyMetrics{
		AvgFirstPeriodRetention: round(first*100, 1),
		AvgThirdPeriodRetention: round(third*100, 1),
		RetentionTrend:          trend,
	}

	if first < 0.3 {
		ins.Recommendations = append(ins.Recommendations, "Implement onboarding improvements - low first-period retention")
	}
	if third < 0.2 {
		ins.Recommendations = append(ins.Recommendations, "Focus on mid-term engagement strategies")
	}
	ins.Recommendations = append(ins.Recommendations,
		"Create targeted retention campaigns for at-risk cohorts",
		"Implement loyalty programs to improve long-term retention",
		"Analyze successful cohorts to replicate strategies",
	)
	return ins
}
