package comparisons

import "testing"

func ptr(f float64) *float64 { return &f }

func TestRankFallsBackToLegacyTotals(t *testing.T) {
	res := ComparisonResult{PriceComparison: PriceComparison{Ranking: []RankingEntry{
		{Supplier: "utan pris"},
		{Supplier: "legacy", Total: ptr(200)},
		{Supplier: "raw", RawTotal: ptr(150)},
		{Supplier: "adjusted", RawTotal: ptr(500), AdjustedTotal: ptr(100)},
	}}}

	Rank(&res)

	got := []string{}
	for _, e := range res.PriceComparison.Ranking {
		got = append(got, e.Supplier)
	}
	want := []string{"adjusted", "raw", "legacy", "utan pris"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	legacy := res.PriceComparison.Ranking[2]
	if legacy.DifferenceFromLowest != 100 || legacy.PercentDifference != 100 {
		t.Fatalf("unexpected legacy differences %+v", legacy)
	}
	if last := res.PriceComparison.Ranking[3]; last.DifferenceFromLowest != 0 || last.PercentDifference != 0 {
		t.Fatalf("unpriced entry should carry no difference, got %+v", last)
	}
}

func TestRankZeroLowestHasNoPercent(t *testing.T) {
	res := ComparisonResult{PriceComparison: PriceComparison{Ranking: []RankingEntry{
		{Supplier: "B", AdjustedTotal: ptr(50)},
		{Supplier: "A", AdjustedTotal: ptr(0)},
	}}}

	Rank(&res)

	b := res.PriceComparison.Ranking[1]
	if b.Supplier != "B" || b.DifferenceFromLowest != 50 || b.PercentDifference != 0 {
		t.Fatalf("unexpected entry %+v", b)
	}
}

func TestRankEmpty(t *testing.T) {
	var res ComparisonResult
	Rank(&res)
	if len(res.PriceComparison.Ranking) != 0 {
		t.Fatalf("expected empty ranking")
	}
}
