// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package analytics

import (
	"math/bits"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Default mining thresholds.
const (
	DefaultMinSupport    = 0.01
	DefaultMinConfidence = 0.3
)

// maxRuleItemset bounds the itemset size rules are split from. Larger
// itemsets would need 2^n antecedent partitions.
const maxRuleItemset = 16

// FrequentItemset is one itemset meeting the support floor.
type FrequentItemset struct {
	Support  float64  `json:"support"`
	Itemsets []string `json:"itemsets"`
}

// AssociationRule is antecedents -> consequents.
type AssociationRule struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Support     float64  `json:"support"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
}

// BasketSummary counts what a mining run produced.
type BasketSummary struct {
	TotalTransactions     int `json:"total_transactions"`
	FrequentItemsetsCount int `json:"frequent_itemsets_count"`
	AssociationRulesCount int `json:"association_rules_count"`

	// SkippedRuleItemsets counts frequent itemsets too large to split into
	// rules.
	SkippedRuleItemsets int `json:"skipped_rule_itemsets,omitempty"`
}

// BasketResult is the output of MarketBasket.
type BasketResult struct {
	FrequentItemsets []FrequentItemset `json:"frequent_itemsets"`
	AssociationRules []AssociationRule `json:"association_rules"`
	Summary          BasketSummary     `json:"summary"`
}

// Transactions groups lines into one distinct-product set per order and
// keeps only orders with at least two distinct products. Orders and their
// products come back sorted.
func Transactions(lines []BasketLine) [][]string {
	byOrder := make(map[string]map[string]struct{})
	for _, l := range lines {
		if l.OrderID == "" || l.Product == "" {
			continue
		}
		set, ok := byOrder[l.OrderID]
		if !ok {
			set = make(map[string]struct{})
			byOrder[l.OrderID] = set
		}
		set[l.Product] = struct{}{}
	}

	orders := make([]string, 0, len(byOrder))
	for id, set := range byOrder {
		if len(set) >= 2 {
			orders = append(orders, id)
		}
	}
	sort.Strings(orders)

	out := make([][]string, 0, len(orders))
	for _, id := range orders {
		items := make([]string, 0, len(byOrder[id]))
		for p := range byOrder[id] {
			items = append(items, p)
		}
		sort.Strings(items)
		out = append(out, items)
	}
	return out
}

// tidset is a bitset over transaction indexes.
type tidset []uint64

func newTidset(n int) tidset {
	return make(tidset, (n+63)/64)
}

func (t tidset) set(i int) {
	t[i/64] |= 1 << (uint(i) % 64)
}

func (t tidset) and(o tidset) tidset {
	out := make(tidset, len(t))
	for i := range t {
		out[i] = t[i] & o[i]
	}
	return out
}

func (t tidset) count() int {
	n := 0
	for _, w := range t {
		n += bits.OnesCount64(w)
	}
	return n
}

type itemset struct {
	items []int
	tids  tidset
	count int
}

func itemsetKey(items []int) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(it))
	}
	return b.String()
}

// MarketBasket mines frequent itemsets level by level and derives
// association rules from them.
//
// A candidate k-itemset is counted only when every (k-1)-subset is frequent.
// An itemset is frequent when it occurs in at least one transaction and its
// support reaches minSupport. Rules keep confidence >= minConfidence.
//
// Rules are split only from itemsets of at most maxRuleItemset (16) items.
// Larger frequent itemsets are still reported, and their count is returned
// in BasketSummary.SkippedRuleItemsets.
func MarketBasket(transactions [][]string, minSupport, minConfidence float64) (*BasketResult, error) {
	return mineBasket(transactions, minSupport, minConfidence, maxRuleItemset)
}

func mineBasket(transactions [][]string, minSupport, minConfidence float64, maxRuleSize int) (*BasketResult, error) {
	if len(transactions) == 0 {
		return nil, empty(MsgNoTransactions)
	}
	n := len(transactions)

	index := make(map[string]int)
	var names []string
	for _, tx := range transactions {
		for _, p := range tx {
			if _, ok := index[p]; !ok {
				index[p] = -1
				names = append(names, p)
			}
		}
	}
	sort.Strings(names)
	for i, p := range names {
		index[p] = i
	}

	vertical := make([]tidset, len(names))
	for i := range vertical {
		vertical[i] = newTidset(n)
	}
	for t, tx := range transactions {
		for _, p := range tx {
			vertical[index[p]].set(t)
		}
	}

	frequent := func(count int) bool {
		return count > 0 && float64(count)/float64(n) >= minSupport
	}

	var level []itemset
	for i, tids := range vertical {
		if c := tids.count(); frequent(c) {
			level = append(level, itemset{items: []int{i}, tids: tids, count: c})
		}
	}

	var all []itemset
	counts := make(map[string]int)
	for len(level) > 0 {
		for _, s := range level {
			counts[itemsetKey(s.items)] = s.count
		}
		all = append(all, level...)
		level = nextLevel(level, counts, frequent)
	}

	if len(all) == 0 {
		return nil, empty(MsgNoFrequentItemsets)
	}

	support := func(items []int) float64 {
		return float64(counts[itemsetKey(items)]) / float64(n)
	}
	toNames := func(items []int) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = names[it]
		}
		return out
	}

	result := &BasketResult{
		FrequentItemsets: make([]FrequentItemset, 0, len(all)),
		AssociationRules: []AssociationRule{},
	}
	skipped := 0
	for _, s := range all {
		sup := float64(s.count) / float64(n)
		result.FrequentItemsets = append(result.FrequentItemsets, FrequentItemset{
			Support:  sup,
			Itemsets: toNames(s.items),
		})

		k := len(s.items)
		if k > maxRuleSize {
			skipped++
			continue
		}
		if k < 2 {
			continue
		}
		full := uint(1)<<uint(k) - 1
		for mask := uint(1); mask < full; mask++ {
			var ante, cons []int
			for b := 0; b < k; b++ {
				if mask&(1<<uint(b)) != 0 {
					ante = append(ante, s.items[b])
				} else {
					cons = append(cons, s.items[b])
				}
			}
			conf := sup / support(ante)
			if conf < minConfidence {
				continue
			}
			result.AssociationRules = append(result.AssociationRules, AssociationRule{
				Antecedents: toNames(ante),
				Consequents: toNames(cons),
				Support:     sup,
				Confidence:  conf,
				Lift:        conf / support(cons),
			})
		}
	}

	result.Summary = BasketSummary{
		TotalTransactions:     n,
		FrequentItemsetsCount: len(result.FrequentItemsets),
		AssociationRulesCount: len(result.AssociationRules),
		SkippedRuleItemsets:   skipped,
	}
	return result, nil
}

// nextLevel joins frequent k-itemsets that share their first k-1 items and
// prunes candidates with an infrequent subset. level must be sorted.
func nextLevel(level []itemset, counts map[string]int, frequent func(int) bool) []itemset {
	var next []itemset
	for i := 0; i < len(level); i++ {
		a := level[i].items
		k := len(a)
		for j := i + 1; j < len(level); j++ {
			b := level[j].items
			if !samePrefix(a, b, k-1) {
				break
			}
			cand := make([]int, k+1)
			copy(cand, a)
			cand[k] = b[k-1]
			if !subsetsFrequent(cand, counts) {
				continue
			}
			tids := level[i].tids.and(level[j].tids)
			if c := tids.count(); frequent(c) {
				next = append(next, itemset{items: cand, tids: tids, count: c})
			}
		}
	}
	return next
}

func samePrefix(a, b []int, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subsetsFrequent checks the k-subsets of cand that drop one of its first
// k-1 items. The two subsets that drop the last two items are the join
// parents and already frequent.
func subsetsFrequent(cand []int, counts map[string]int) bool {
	sub := make([]int, 0, len(cand)-1)
	for drop := 0; drop < len(cand)-2; drop++ {
		sub = sub[:0]
		for i, it := range cand {
			if i != drop {
				sub = append(sub, it)
			}
		}
		if _, ok := counts[itemsetKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func sortRules(rules []AssociationRule, less func(a, b AssociationRule) bool) []AssociationRule {
	out := append([]AssociationRule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byLift(a, b AssociationRule) bool       { return a.Lift > b.Lift }
func byConfidence(a, b AssociationRule) bool { return a.Confidence > b.Confidence }

// head returns at most the first n elements of s.
func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	return s[:min(n, len(s))]
}

// TopAssociations returns up to limit rules ranked by lift.
func TopAssociations(r *BasketResult, limit int) ([]AssociationRule, error) {
	if r == nil || len(r.AssociationRules) == 0 {
		return nil, empty(MsgNoRules)
	}
	return head(sortRules(r.AssociationRules, byLift), limit), nil
}

// ProductRecommendations is the rule set for one antecedent product.
type ProductRecommendations struct {
	Product         string            `json:"product"`
	Recommendations []AssociationRule `json:"recommendations"`
}

// RecommendForProduct returns up to limit rules whose antecedents contain
// product, ranked by confidence.
func RecommendForProduct(r *BasketResult, product string, limit int) (*ProductRecommendations, error) {
	if r == nil || len(r.AssociationRules) == 0 {
		return nil, empty(MsgNoRules)
	}
	var matched []AssociationRule
	for _, rule := range r.AssociationRules {
		if slices.Contains(rule.Antecedents, product) {
			matched = append(matched, rule)
		}
	}
	out := head(sortRules(matched, byConfidence), limit)
	if out == nil {
		out = []AssociationRule{}
	}
	return &ProductRecommendations{Product: product, Recommendations: out}, nil
}

// CustomerRecommendations is the response for one customer.
type CustomerRecommendations struct {
	CustomerID        string            `json:"customer_id"`
	PurchasedProducts []string          `json:"purchased_products"`
	Recommendations   []AssociationRule `json:"recommendations"`
}

const (
	rulesPerPurchase   = 5
	maxRecommendations = 10
)

// RecommendForCustomer collects the rulesPerPurchase most confident rules for
// each purchased product, drops duplicate rules and keeps the ten most
// confident. Rules are returned as mined, including ones whose consequents
// the customer already owns.
func RecommendForCustomer(r *BasketResult, customerID string, purchased []string) (*CustomerRecommendations, error) {
	if len(purchased) == 0 {
		return nil, empty(MsgNoPurchaseHistory)
	}

	seen := make(map[string]struct{})
	var recs []AssociationRule
	if r != nil {
		for _, p := range purchased {
			top, _ := RecommendForProduct(r, p, rulesPerPurchase)
			if top == nil {
				continue
			}
			for _, rule := range top.Recommendations {
				key := ruleKey(rule)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				recs = append(recs, rule)
			}
		}
	}
	if len(recs) == 0 {
		return nil, empty(MsgNoRecommendations)
	}

	return &CustomerRecommendations{
		CustomerID:        customerID,
		PurchasedProducts: purchased,
		Recommendations:   head(sortRules(recs, byConfidence), maxRecommendations),
	}, nil
}

// ruleKey identifies a rule by its two sides.
func ruleKey(rule AssociationRule) string {
	return strings.Join(rule.Antecedents, "\x1f") + "\x1e" + strings.Join(rule.Consequents, "\x1f")
}

// BasketInsights highlights the strongest patterns of a mining run.
type BasketInsights struct {
	StrongestAssociations  []AssociationRule `json:"strongest_associations"`
	HighestConfidenceRules []AssociationRule `json:"highest_confidence_rules"`
	MostFrequentItemsets   []FrequentItemset `json:"most_frequent_itemsets"`
}

// BuildBasketInsights reports the top five rules by lift and by confidence
// and the five best supported itemsets.
func BuildBasketInsights(r *BasketResult) (*BasketInsights, error) {
	if r == nil || len(r.AssociationRules) == 0 {
		return nil, empty(MsgNoRules)
	}
	sets := append([]FrequentItemset(nil), r.FrequentItemsets...)
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].Support > sets[j].Support })
	return &BasketInsights{
		StrongestAssociations:  head(sortRules(r.AssociationRules, byLift), 5),
		HighestConfidenceRules: head(sortRules(r.AssociationRules, byConfidence), 5),
		MostFrequentItemsets:   head(sets, 5),
	}, nil
}
