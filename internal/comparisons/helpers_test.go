package comparisons

import (
	"context"
	"sync"

	"offertanalys/internal/quotes"
)

// stubLLM returns a fixed reply and keeps the last prompt.
type stubLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
	return s.reply, s.err
}

func (s *stubLLM) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

func item(desc, category string, total float64) quotes.LineItem {
	return quotes.LineItem{Description: desc, Category: category, Total: total}
}

func quote(supplier string, items ...quotes.LineItem) ComparisonQuote {
	return ComparisonQuote{SupplierName: supplier, Data: quotes.ExtractedQuote{
		Supplier: quotes.SupplierInfo{Name: supplier},
		Items:    items,
	}}
}

// threeSuppliers: A{X,Y}, B{X}, C{X,Z}. Raw 150/120/130, adjusted 100/120/90.
func threeSuppliers() []ComparisonQuote {
	return []ComparisonQuote{
		quote("A", item("Radiator", "Radiatorer", 100), item("Pump", "Pumpar", 50)),
		quote("B", item("Radiator", "radiatorer", 120)),
		quote("C", item("Radiator", "Radiatorer", 90), item("Rör", "Rör", 40)),
	}
}

// modelReply ranks by raw total and scores compliance outside 0..100.
const modelReply = "```json\n" + `{
  "summary": "Tre offerter jämförda.",
  "price_comparison": {
    "ranking": [
      {"supplier": "B", "raw_total": 120, "adjusted_total": 120},
      {"supplier": "C", "raw_total": 130, "adjusted_total": 130},
      {"supplier": "A", "raw_total": 150, "adjusted_total": 150, "adjustment_details": "Pumpar ingår endast hos A"}
    ],
    "price_notes": "B är billigast."
  },
  "specification_compliance": {"per_supplier": [
    {"supplier": "A", "compliance_score": 140},
    {"supplier": "B", "compliance_score": -5},
    {"supplier": "C", "compliance_score": 80}
  ]},
  "pros_cons": [],
  "recommendation": {"recommended_supplier": "B", "reasoning": "Lägst pris."},
  "questions_to_clarify": []
}` + "\n```"
