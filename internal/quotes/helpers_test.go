package quotes

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// stubLLM answers with the reply whose marker appears in the prompt.
type stubLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for marker, err := range s.errs {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, reply := range s.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("no stub reply for prompt")
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const ahlsellReply = `{
  "supplier": {"name": "Ahlsell AB", "email": "offert@ahlsell.se", "phone": "08-685 70 00"},
  "quote_info": {"quote_number": "Q-77", "date": "01.03.2025", "valid_until": "2025-03-31"},
  "terms": {"payment": "30 dagar netto", "delivery": "Fritt byggarbetsplats"},
  "items": [
    {"description": "Radiator 22-600-1200", "quantity": "4", "unit": "st", "unit_price": "2 150,00 kr", "type": "produkt", "category": "radiatorer"},
    {"description": "Termostat", "quantity": 4, "unit_price": 320, "type": "tillbehör", "category": "radiatorer"}
  ],
  "totals": {}
}`

const dahlReply = "```json\n" + `{
  "supplier": {"name": "Dahl Sverige AB"},
  "quote_info": {},
  "terms": {},
  "items": [{"description": "Golvvärmerör 16 mm", "quantity": 200, "unit": "m", "unit_price": 12.5}],
  "totals": {"subtotal": 2500, "vat": 625, "total": 3125}
}` + "\n```"
