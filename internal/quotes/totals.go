package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	swedishVATRate = decimal.NewFromFloat(0.25)
	vatTolerance   = decimal.NewFromInt(1)
)

// enforceNetOfVAT replaces a gross total with the net figure when the
// totals show that VAT was added on top.
func enforceNetOfVAT(t *Totals) {
	vat := decimal.NewFromFloat(t.VAT)
	if !vat.IsPositive() {
		return
	}
	total := decimal.NewFromFloat(t.Total)
	subtotal := decimal.NewFromFloat(t.Subtotal)

	if subtotal.IsPositive() {
		if total.Sub(subtotal.Add(vat)).Abs().LessThanOrEqual(vatTolerance) {
			t.Total = subtotal.Round(2).InexactFloat64()
		}
		return
	}

	if !total.GreaterThan(vat) {
		return
	}
	net := total.Sub(vat)
	if vat.Sub(net.Mul(swedishVATRate)).Abs().LessThanOrEqual(vatTolerance) {
		rounded := net.Round(2).InexactFloat64()
		t.Total = rounded
		t.Subtotal = rounded
	}
}

// LineValue is the item's stated total, else quantity × unit price.
func LineValue(item LineItem) decimal.Decimal {
	if item.Total != 0 {
		return decimal.NewFromFloat(item.Total)
	}
	return decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
}

// deriveTotal fills a missing or zero total from the line items.
func deriveTotal(q *ExtractedQuote) {
	if q.Totals.Total != 0 || len(q.Items) == 0 {
		return
	}
	sum := decimal.Zero
	for _, item := range q.Items {
		sum = sum.Add(LineValue(item))
	}
	q.Totals.Total = sum.Round(2).InexactFloat64()
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"02.01.2006",
	"02/01/2006",
	time.RFC3339,
}

// normalizeDate returns s as YYYY-MM-DD, or "" when it is not a recognizable date.
func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
