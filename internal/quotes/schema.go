package quotes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "extracted_quote.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func objectSchema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func extractedQuoteSchema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "number"}
	strList := map[string]any{"type": "array", "items": str}

	item := objectSchema(map[string]any{
		"position":         str,
		"article_number":   str,
		"description":      map[string]any{"type": "string", "minLength": 1},
		"quantity":         num,
		"unit":             str,
		"unit_price":       num,
		"discount_percent": num,
		"total":            num,
		"type":             map[string]any{"enum": []string{"", ItemTypeProduct, ItemTypeAccessory, ItemTypeService, ItemTypeOption}},
		"category":         str,
		"specifications": objectSchema(map[string]any{
			"type":           str,
			"dimensions":     str,
			"color":          str,
			"pressure_class": str,
			"other":          map[string]any{"type": "object"},
		}),
	}, "description")

	return objectSchema(map[string]any{
		"supplier": objectSchema(map[string]any{
			"name":           str,
			"org_number":     str,
			"contact_person": str,
			"email":          str,
			"phone":          str,
		}),
		"quote_info": objectSchema(map[string]any{
			"quote_number": str,
			"date":         str,
			"valid_until":  str,
			"reference":    str,
			"project_name": str,
		}),
		"terms": objectSchema(map[string]any{
			"payment":          str,
			"delivery":         str,
			"warranty":         str,
			"other_conditions": strList,
		}),
		"items": map[string]any{"type": "array", "items": item},
		"totals": objectSchema(map[string]any{
			"subtotal": num,
			"vat":      num,
			"total":    num,
		}),
		"included":     strList,
		"not_included": strList,
		"options":      strList,
		"notes":        strList,
	}, "supplier", "quote_info", "terms", "items", "totals")
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(extractedQuoteSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateDocument checks a sanitized document against the extraction schema.
func validateDocument(doc map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// sanitizeDocument coerces loosely typed model output toward the schema:
// numeric strings become numbers, missing sections are default filled,
// items without a description are dropped and unknown item types blanked.
func sanitizeDocument(doc map[string]any) map[string]any {
	if doc == nil {
		doc = map[string]any{}
	}
	supplier := asObject(doc["supplier"])
	sanitizeStrings(supplier, "name", "org_number", "contact_person", "email", "phone")
	doc["supplier"] = supplier

	info := asObject(doc["quote_info"])
	sanitizeStrings(info, "quote_number", "date", "valid_until", "reference", "project_name")
	doc["quote_info"] = info

	terms := asObject(doc["terms"])
	sanitizeStrings(terms, "payment", "delivery", "warranty")
	terms["other_conditions"] = stringList(terms["other_conditions"])
	doc["terms"] = terms

	totals := asObject(doc["totals"])
	sanitizeNumbers(totals, "subtotal", "vat", "total")
	doc["totals"] = totals

	items := make([]any, 0)
	for _, raw := range asList(doc["items"]) {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		sanitizeStrings(item, "position", "article_number", "description", "unit", "type", "category")
		if desc, _ := item["description"].(string); desc == "" {
			continue
		}
		sanitizeNumbers(item, "quantity", "unit_price", "discount_percent", "total")
		item["type"] = normalizeItemType(item["type"])
		if specs, ok := item["specifications"].(map[string]any); ok {
			sanitizeStrings(specs, "type", "dimensions", "color", "pressure_class")
			if _, ok := specs["other"].(map[string]any); !ok {
				delete(specs, "other")
			}
		} else {
			delete(item, "specifications")
		}
		items = append(items, item)
	}
	doc["items"] = items

	for _, key := range []string{"included", "not_included", "options", "notes"} {
		doc[key] = stringList(doc[key])
	}
	return doc
}

func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func stringList(v any) []any {
	out := make([]any, 0)
	for _, raw := range asList(v) {
		if s, ok := scalarString(raw); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func sanitizeStrings(m map[string]any, keys ...string) {
	for _, key := range keys {
		raw, present := m[key]
		if !present {
			continue
		}
		s, ok := scalarString(raw)
		if !ok {
			delete(m, key)
			continue
		}
		m[key] = s
	}
}

func sanitizeNumbers(m map[string]any, keys ...string) {
	for _, key := range keys {
		raw, present := m[key]
		if !present {
			continue
		}
		f, ok := ParseNumber(raw)
		if !ok {
			delete(m, key)
			continue
		}
		m[key] = f
	}
}

func normalizeItemType(v any) string {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ItemTypeProduct, "produkt", "material":
		return ItemTypeProduct
	case ItemTypeAccessory, "tillbehör":
		return ItemTypeAccessory
	case ItemTypeService, "tjänst", "montage", "arbete":
		return ItemTypeService
	case ItemTypeOption, "tillval":
		return ItemTypeOption
	}
	return ""
}

// ParseNumber accepts JSON numbers and amount strings in Swedish or English notation.
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseSwedishNumber(t)
	}
	return 0, false
}

// parseSwedishNumber reads amounts such as "12 500,50 kr", "1.234,50" or "1 200:-".
// The right-most of ',' and '.' is taken as the decimal separator.
func parseSwedishNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case (r == '-' || r == '−') && b.Len() == 0:
			b.WriteByte('-')
		}
	}
	num := strings.TrimRight(b.String(), ".,")
	if num == "" || num == "-" {
		return 0, false
	}

	lastComma := strings.LastIndex(num, ",")
	lastDot := strings.LastIndex(num, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(num, ",") > 1 {
			num = strings.ReplaceAll(num, ",", "")
		} else {
			num = strings.Replace(num, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(num, ".") > 1:
		num = strings.ReplaceAll(num, ".", "")
	}

	f, err := strconv.ParseFloat(num, 64)
	return f, err == nil
}
