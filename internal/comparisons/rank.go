package comparisons

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// rankValue is the figure an entry is ranked by: adjusted, then raw, then
// the legacy total.
func rankValue(e RankingEntry) *float64 {
	switch {
	case e.AdjustedTotal != nil:
		return e.AdjustedTotal
	case e.RawTotal != nil:
		return e.RawTotal
	default:
		return e.Total
	}
}

// Rank orders the ranking cheapest first, entries without any price last,
// and recomputes the differences against the cheapest entry.
func Rank(res *ComparisonResult) {
	ranking := res.PriceComparison.Ranking
	sort.SliceStable(ranking, func(i, j int) bool {
		a, b := rankValue(ranking[i]), rankValue(ranking[j])
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})

	if len(ranking) == 0 || rankValue(ranking[0]) == nil {
		return
	}
	lowest := decimal.NewFromFloat(*rankValue(ranking[0]))
	for i := range ranking {
		v := rankValue(ranking[i])
		if v == nil {
			ranking[i].DifferenceFromLowest = 0
			ranking[i].PercentDifference = 0
			continue
		}
		diff := decimal.NewFromFloat(*v).Sub(lowest)
		ranking[i].DifferenceFromLowest = diff.Round(2).InexactFloat64()
		if lowest.IsZero() {
			ranking[i].PercentDifference = 0
			continue
		}
		ranking[i].PercentDifference = diff.Div(lowest).Mul(hundred).Round(2).InexactFloat64()
	}
}

// clampCompliance keeps compliance scores within 0..100.
func clampCompliance(res *ComparisonResult) {
	for i := range res.SpecificationCompliance.PerSupplier {
		s := &res.SpecificationCompliance.PerSupplier[i]
		switch {
		case s.ComplianceScore < 0:
			s.ComplianceScore = 0
		case s.ComplianceScore > 100:
			s.ComplianceScore = 100
		}
	}
}
