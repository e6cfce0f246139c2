package comparisons

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"offertanalys/internal/quotes"
)

const scopeWarning = "Offerterna har olika omfattning. Jämför de justerade totalerna."

// fullyCategorized reports whether every quote has line items and every
// item carries a product category.
func fullyCategorized(qs []ComparisonQuote) bool {
	for _, q := range qs {
		if len(q.Data.Items) == 0 {
			return false
		}
		for _, item := range q.Data.Items {
			if strings.TrimSpace(item.Category) == "" {
				return false
			}
		}
	}
	return true
}

type quoteScope struct {
	supplier string
	values   map[string]decimal.Decimal
	raw      decimal.Decimal
}

// reconcileScope computes the scope analysis and the raw and adjusted totals
// from the line items, replacing whatever figures the model produced. The
// model's warning and adjustment prose are kept where present.
func reconcileScope(res *ComparisonResult, qs []ComparisonQuote) {
	fold := cases.Fold()
	display := make(map[string]string)
	var order []string

	scopes := make([]quoteScope, 0, len(qs))
	for _, q := range qs {
		sc := quoteScope{supplier: q.SupplierName, values: make(map[string]decimal.Decimal)}
		sum := decimal.Zero
		for _, item := range q.Data.Items {
			name := strings.Join(strings.Fields(item.Category), " ")
			key := fold.String(name)
			if _, seen := display[key]; !seen {
				display[key] = name
				order = append(order, key)
			}
			v := quotes.LineValue(item)
			sc.values[key] = sc.values[key].Add(v)
			sum = sum.Add(v)
		}
		sc.raw = sum
		if q.Data.Totals.Total != 0 {
			sc.raw = decimal.NewFromFloat(q.Data.Totals.Total)
		}
		scopes = append(scopes, sc)
	}

	common := make(map[string]bool)
	for _, key := range order {
		inAll := true
		for _, sc := range scopes {
			if _, ok := sc.values[key]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common[key] = true
		}
	}

	analysis := ScopeAnalysis{
		CategoriesFound:  make([]string, 0, len(order)),
		CommonCategories: make([]string, 0, len(common)),
		ScopeDifferences: []ScopeDifference{},
	}
	if res.ScopeAnalysis != nil {
		analysis.Warning = res.ScopeAnalysis.Warning
	}
	for _, key := range order {
		analysis.CategoriesFound = append(analysis.CategoriesFound, display[key])
		if common[key] {
			analysis.CommonCategories = append(analysis.CommonCategories, display[key])
		}
	}

	prior := make(map[string]RankingEntry, len(res.PriceComparison.Ranking))
	for _, e := range res.PriceComparison.Ranking {
		prior[fold.String(strings.TrimSpace(e.Supplier))] = e
	}

	ranking := make([]RankingEntry, 0, len(scopes))
	for _, sc := range scopes {
		extra := []string{}
		missing := []string{}
		extraValue := decimal.Zero
		for _, key := range order {
			_, has := sc.values[key]
			switch {
			case has && !common[key]:
				extra = append(extra, display[key])
				extraValue = extraValue.Add(sc.values[key])
			case !has:
				missing = append(missing, display[key])
			}
		}
		if len(extra) > 0 || len(missing) > 0 {
			analysis.ScopeDifferences = append(analysis.ScopeDifferences, ScopeDifference{
				Supplier:          sc.supplier,
				ExtraCategories:   extra,
				ExtraValue:        extraValue.Round(2).InexactFloat64(),
				MissingCategories: missing,
			})
		}

		raw := sc.raw.Round(2).InexactFloat64()
		adjusted := sc.raw.Sub(extraValue).Round(2).InexactFloat64()
		entry := RankingEntry{Supplier: sc.supplier, RawTotal: &raw, AdjustedTotal: &adjusted}
		if prev, ok := prior[fold.String(strings.TrimSpace(sc.supplier))]; ok {
			entry.AdjustmentDetails = prev.AdjustmentDetails
		}
		if entry.AdjustmentDetails == "" && !extraValue.IsZero() {
			entry.AdjustmentDetails = fmt.Sprintf("Avdrag %s kr för %s som saknas hos övriga leverantörer",
				extraValue.StringFixed(2), strings.Join(extra, ", "))
		}
		ranking = append(ranking, entry)
	}

	if len(analysis.ScopeDifferences) > 0 && strings.TrimSpace(analysis.Warning) == "" {
		analysis.Warning = scopeWarning
	}
	res.ScopeAnalysis = &analysis
	res.PriceComparison.Ranking = ranking
}
