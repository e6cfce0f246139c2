package comparisons

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"offertanalys/internal/quotes"
)

// decodeResult turns loosely typed model output into a ComparisonResult.
// Amounts and scores written as strings ("12 500 kr", "85") are coerced,
// unparseable ones dropped, and non-object list entries skipped.
func decodeResult(doc map[string]any) (ComparisonResult, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	sanitizeText(doc, "summary")

	if price, ok := doc["price_comparison"].(map[string]any); ok {
		sanitizeText(price, "price_notes", "comparison_basis")
		price["ranking"] = sanitizeEntries(price["ranking"], func(e map[string]any) {
			sanitizeText(e, "supplier", "adjustment_details")
			coerceNumbers(e, "total", "raw_total", "adjusted_total", "difference_from_lowest", "percent_difference")
		})
	} else {
		delete(doc, "price_comparison")
	}

	if scope, ok := doc["scope_analysis"].(map[string]any); ok {
		sanitizeText(scope, "warning")
		scope["scope_differences"] = sanitizeEntries(scope["scope_differences"], func(e map[string]any) {
			sanitizeText(e, "supplier")
			coerceNumbers(e, "extra_value")
		})
	} else {
		delete(doc, "scope_analysis")
	}

	if compliance, ok := doc["specification_compliance"].(map[string]any); ok {
		compliance["per_supplier"] = sanitizeEntries(compliance["per_supplier"], func(e map[string]any) {
			sanitizeText(e, "supplier")
			coerceNumbers(e, "compliance_score")
		})
	} else {
		delete(doc, "specification_compliance")
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return ComparisonResult{}, fmt.Errorf("encode comparison: %w", err)
	}
	var res ComparisonResult
	if err := json.Unmarshal(buf, &res); err != nil {
		return ComparisonResult{}, fmt.Errorf("decode comparison: %w", err)
	}
	return res, nil
}

func sanitizeEntries(v any, fn func(map[string]any)) []any {
	list, _ := v.([]any)
	out := make([]any, 0, len(list))
	for _, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fn(entry)
		out = append(out, entry)
	}
	return out
}

func coerceNumbers(m map[string]any, keys ...string) {
	for _, key := range keys {
		raw, present := m[key]
		if !present || raw == nil {
			continue
		}
		f, ok := quotes.ParseNumber(raw)
		if !ok {
			delete(m, key)
			continue
		}
		m[key] = f
	}
}

func sanitizeText(m map[string]any, keys ...string) {
	for _, key := range keys {
		switch t := m[key].(type) {
		case nil, string:
		case float64:
			m[key] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			delete(m, key)
		}
		if s, ok := m[key].(string); ok {
			m[key] = strings.TrimSpace(s)
		}
	}
}
