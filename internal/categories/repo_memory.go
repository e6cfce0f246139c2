package categories

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu             sync.RWMutex
	projects       map[string]Project
	categories     map[string]Category
	specifications map[string]Specification
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects:       make(map[string]Project),
		categories:     make(map[string]Category),
		specifications: make(map[string]Specification),
	}
}

func (r *MemoryRepo) PutProject(p Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
}

func (r *MemoryRepo) PutCategory(c Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ProjectName = ""
	r.categories[c.ID] = c
}

func (r *MemoryRepo) PutSpecification(s Specification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specifications[s.ID] = s
}

func (r *MemoryRepo) GetCategory(ctx context.Context, id string) (Category, error) {
	if err := ctx.Err(); err != nil {
		return Category{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	c.ProjectName = r.projects[c.ProjectID].Name
	return c, nil
}

func (r *MemoryRepo) SelectQuote(ctx context.Context, categoryID, quoteID string) error {
	return r.update(ctx, categoryID, func(c *Category) { c.SelectedQuoteID = quoteID })
}

func (r *MemoryRepo) ClearSelectedQuote(ctx context.Context, categoryID, quoteID string) error {
	return r.update(ctx, categoryID, func(c *Category) {
		if c.SelectedQuoteID == quoteID {
			c.SelectedQuoteID = ""
		}
	})
}

func (r *MemoryRepo) GetSpecification(ctx context.Context, id string) (Specification, error) {
	if err := ctx.Err(); err != nil {
		return Specification{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specifications[id]
	if !ok {
		return Specification{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) SetSpecificationText(ctx context.Context, id, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.specifications[id]
	if !ok {
		return ErrNotFound
	}
	s.ExtractedText = text
	r.specifications[id] = s
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*Category)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return ErrNotFound
	}
	fn(&c)
	r.categories[id] = c
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
