// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"fmt"
	"sort"
	"time"
)

// RFM segment names.
const (
	SegmentChampions          = "Champions"
	SegmentLoyal              = "Loyal Customers"
	SegmentNew                = "New Customers"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentAtRisk             = "At Risk"
	SegmentCannotLose         = "Cannot Lose Them"
	SegmentAboutToSleep       = "About to Sleep"
	SegmentLost               = "Lost"
)

// RFMSegments lists every segment name in rule order.
var RFMSegments = []string{
	SegmentChampions,
	SegmentLoyal,
	SegmentNew,
	SegmentPotentialLoyalists,
	SegmentAtRisk,
	SegmentCannotLose,
	SegmentAboutToSleep,
	SegmentLost,
}

// RFMRecord is one scored customer.
type RFMRecord struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	RScore     int     `json:"r_score"`
	FScore     int     `json:"f_score"`
	MScore     int     `json:"m_score"`
	RFMScore   string  `json:"rfm_score"`
	Segment    string  `json:"segment"`
}

// RFMSegmentSummary aggregates one segment.
type RFMSegmentSummary struct {
	Segment       string  `json:"segment"`
	CustomerCount int     `json:"customer_count"`
	AvgRecency    float64 `json:"avg_recency"`
	AvgFrequency  float64 `json:"avg_frequency"`
	AvgMonetary   float64 `json:"avg_monetary"`
}

// RFMResult is the output of RFM.
type RFMResult struct {
	RFMData        []RFMRecord         `json:"rfm_data"`
	SegmentSummary []RFMSegmentSummary `json:"segment_summary"`
	TotalCustomers int                 `json:"total_customers"`
	ReferenceDate  string              `json:"reference_date"`
}

// RFM scores every customer found in lines relative to ref.
//
// Lines dated after ref or without a customer are ignored. Recency is whole
// days between ref and the customer's latest order, frequency counts order
// lines and monetary sums their amounts. Each metric is cut into five
// equal-frequency bins; recency scores are inverted so the most recent buyers
// score 5.
func RFM(lines []OrderLine, ref time.Time) (*RFMResult, error) {
	type acc struct {
		last      time.Time
		frequency int
		monetary  float64
	}

	byCustomer := make(map[string]*acc)
	for _, l := range lines {
		if l.CustomerID == "" || l.OrderDate.After(ref) {
			continue
		}
		a, ok := byCustomer[l.CustomerID]
		if !ok {
			a = &acc{last: l.OrderDate}
			byCustomer[l.CustomerID] = a
		}
		if l.OrderDate.After(a.last) {
			a.last = l.OrderDate
		}
		a.frequency++
		a.monetary += l.Amount
	}
	if len(byCustomer) == 0 {
		return nil, empty(MsgNoCustomerData)
	}

	ids := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]RFMRecord, len(ids))
	recency := make([]float64, len(ids))
	frequency := make([]float64, len(ids))
	monetary := make([]float64, len(ids))
	for i, id := range ids {
		a := byCustomer[id]
		days := int(ref.Sub(a.last).Hours() / 24)
		records[i] = RFMRecord{CustomerID: id, Recency: days, Frequency: a.frequency, Monetary: a.monetary}
		recency[i] = float64(days)
		frequency[i] = float64(a.frequency)
		monetary[i] = a.monetary
	}

	rBins := newQuantileBins(recency)
	fBins := newQuantileBins(frequency)
	mBins := newQuantileBins(monetary)

	for i := range records {
		r := &records[i]
		r.RScore = 6 - rBins.bin(recency[i])
		r.FScore = fBins.bin(frequency[i])
		r.MScore = mBins.bin(monetary[i])
		r.RFMScore = fmt.Sprintf("%d%d%d", r.RScore, r.FScore, r.MScore)
		r.Segment = ClassifyRFM(r.RScore, r.FScore, r.MScore)
	}

	return &RFMResult{
		RFMData:        records,
		SegmentSummary: summarizeSegments(records),
		TotalCustomers: len(records),
		ReferenceDate:  ref.Format(DateLayout),
	}, nil
}

// ClassifyRFM applies the segment rules in order; the first match wins.
func ClassifyRFM(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyal
	case r >= 4 && f <= 2:
		return SegmentNew
	case r >= 3 && f >= 2 && m >= 2:
		return SegmentPotentialLoyalists
	case r >= 3 && f <= 2 && m <= 2:
		return SegmentAtRisk
	case r <= 2 && f >= 3 && m >= 3:
		return SegmentCannotLose
	case r <= 2 && f >= 2 && m >= 2:
		return SegmentAboutToSleep
	default:
		return SegmentLost
	}
}

// summarizeSegments returns one row per populated segment, sorted by name.
func summarizeSegments(records []RFMRecord) []RFMSegmentSummary {
	bySegment := make(map[string]*RFMSegmentSummary)
	for _, r := range records {
		s, ok := bySegment[r.Segment]
		if !ok {
			s = &RFMSegmentSummary{Segment: r.Segment}
			bySegment[r.Segment] = s
		}
		s.CustomerCount++
		s.AvgRecency += float64(r.Recency)
		s.AvgFrequency += float64(r.Frequency)
		s.AvgMonetary += r.Monetary
	}

	out := make([]RFMSegmentSummary, 0, len(bySegment))
	for _, s := range bySegment {
		n := float64(s.CustomerCount)
		s.AvgRecency /= n
		s.AvgFrequency /= n
		s.AvgMonetary /= n
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Segment < out[j].Segment })
	return out
}

// RFMTopSegment is a segment's share of the customer base.
type RFMTopSegment struct {
	Segment    string  `json:"segment"`
	Percentage float64 `json:"percentage"`
	AvgValue   float64 `json:"avg_value"`
}

// RevenueOpportunity compares Champions revenue with the revenue at risk.
type RevenueOpportunity struct {
	ChampionsRevenue     float64 `json:"champions_revenue"`
	AtRiskRevenue        float64 `json:"at_risk_revenue"`
	RetentionOpportunity float64 `json:"retention_opportunity"`
}

// RFMInsights summarizes an RFM result for dashboards.
type RFMInsights struct {
	TopSegments        []RFMTopSegment     `json:"top_segments"`
	RevenueOpportunity *RevenueOpportunity `json:"revenue_opportunity"`
	Recommendations    []string            `json:"recommendations"`
}

// atRiskRecoveryRate is the share of at-risk revenue assumed recoverable.
const atRiskRecoveryRate = 0.2

var rfmRecommendations = []string{
	"Focus retention efforts on 'At Risk' customers",
	"Increase engagement with 'About to Sleep' segment",
	"Upsell to 'Loyal Customers' to maximize value",
	"Create win-back campaigns for 'Lost' customers",
}

// BuildRFMInsights derives segment shares and the revenue opportunity.
// RevenueOpportunity is nil unless both Champions and At Risk are populated.
func BuildRFMInsights(res *RFMResult) *RFMInsights {
	ins := &RFMInsights{
		TopSegments:     make([]RFMTopSegment, 0, len(res.SegmentSummary)),
		Recommendations: append([]string(nil), rfmRecommendations...),
	}

	var champions, atRisk *RFMSegmentSummary
	for i := range res.SegmentSummary {
		s := &res.SegmentSummary[i]
		if s.CustomerCount == 0 {
			continue
		}
		ins.TopSegments = append(ins.TopSegments, RFMTopSegment{
			Segment:    s.Segment,
			Percentage: round(float64(s.CustomerCount)/float64(res.TotalCustomers)*100, 2),
			AvgValue:   s.AvgMonetary,
		})
		switch s.Segment {
		case SegmentChampions:
			champions = s
		case SegmentAtRisk:
			atRisk = s
		}
	}

	if champions != nil && atRisk != nil {
		atRiskRevenue := atRisk.AvgMonetary * float64(atRisk.CustomerCount)
		ins.RevenueOpportunity = &RevenueOpportunity{
			ChampionsRevenue:     champions.AvgMonetary * float64(champions.CustomerCount),
			AtRiskRevenue:        atRiskRevenue,
			RetentionOpportunity: round(atRiskRevenue*atRiskRecoveryRate, 2),
		}
	}
	return ins
}
