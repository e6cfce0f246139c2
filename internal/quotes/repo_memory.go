package quotes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	items  map[string][]QuoteItem
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		quotes: make(map[string]Quote),
		items:  make(map[string][]QuoteItem),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, q Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := q.Items
	q.Items = nil
	r.quotes[q.ID] = q
	if len(items) > 0 {
		r.items[q.ID] = append([]QuoteItem(nil), items...)
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return r.withItems(q), nil
}

func (r *MemoryRepo) ListByIDs(ctx context.Context, ids []string) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Quote, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if q, ok := r.quotes[id]; ok {
			out = append(out, r.withItems(q))
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListByCategory(ctx context.Context, categoryID string) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Quote, 0)
	for _, q := range r.quotes {
		if q.CategoryID == categoryID {
			out = append(out, r.withItems(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) ListPending(ctx context.Context, since time.Time, limit int) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Quote, 0)
	for _, q := range r.quotes {
		if q.Status != StatusPending || q.CreatedAt.Before(since) {
			continue
		}
		if q.FilePath == "" && q.ExtractedText == "" {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateExtractedText(ctx context.Context, id, text string, at time.Time) error {
	return r.update(ctx, id, func(q *Quote) {
		q.ExtractedText = text
		q.UpdatedAt = at
	})
}

func (r *MemoryRepo) UpdateAnalysis(ctx context.Context, id string, upd AnalysisUpdate) error {
	return r.update(ctx, id, func(q *Quote) {
		analysis := upd.AIAnalysis
		q.SupplierName = upd.SupplierName
		q.QuoteNumber = upd.QuoteNumber
		q.QuoteDate = upd.QuoteDate
		q.ValidUntil = upd.ValidUntil
		q.ContactPerson = upd.ContactPerson
		q.ContactEmail = upd.ContactEmail
		q.ContactPhone = upd.ContactPhone
		q.TotalAmount = upd.TotalAmount
		q.VATIncluded = false
		q.PaymentTerms = upd.PaymentTerms
		q.DeliveryTerms = upd.DeliveryTerms
		q.WarrantyPeriod = upd.WarrantyPeriod
		q.AISummary = upd.AISummary
		q.AIAnalysis = &analysis
		q.Status = StatusAnalyzed
		q.UpdatedAt = upd.UpdatedAt
	})
}

func (r *MemoryRepo) ReplaceItems(ctx context.Context, quoteID string, items []QuoteItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[quoteID]; !ok {
		return ErrNotFound
	}
	if len(items) == 0 {
		delete(r.items, quoteID)
		return nil
	}
	r.items[quoteID] = append([]QuoteItem(nil), items...)
	return nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return r.update(ctx, id, func(q *Quote) {
		q.Status = status
		q.UpdatedAt = at
	})
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*Quote)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return ErrNotFound
	}
	fn(&q)
	r.quotes[id] = q
	return nil
}

func (r *MemoryRepo) withItems(q Quote) Quote {
	items := r.items[q.ID]
	q.Items = make([]QuoteItem, len(items))
	copy(q.Items, items)
	return q
}

var _ Repo = (*MemoryRepo)(nil)
