package comparisons

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo keyed by category.
type MemoryRepo struct {
	mu         sync.RWMutex
	byCategory map[string]Comparison
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byCategory: make(map[string]Comparison)}
}

func (r *MemoryRepo) Save(ctx context.Context, c Comparison) (Comparison, error) {
	if err := ctx.Err(); err != nil {
		return Comparison{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byCategory[c.CategoryID]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	c.QuoteIDs = append([]string{}, c.QuoteIDs...)
	r.byCategory[c.CategoryID] = c
	return c, nil
}

func (r *MemoryRepo) GetByCategory(ctx context.Context, categoryID string) (Comparison, error) {
	if err := ctx.Err(); err != nil {
		return Comparison{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byCategory[categoryID]
	if !ok {
		return Comparison{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) DeleteByCategory(ctx context.Context, categoryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byCategory, categoryID)
	return nil
}

// Len returns the number of stored comparisons.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCategory)
}

var _ Repo = (*MemoryRepo)(nil)
