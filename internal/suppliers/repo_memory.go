package suppliers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu        sync.RWMutex
	suppliers map[string]Supplier
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{suppliers: make(map[string]Supplier)}
}

func (r *MemoryRepo) FindByName(ctx context.Context, name string) (Supplier, error) {
	if err := ctx.Err(); err != nil {
		return Supplier{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.findLocked(name)
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) FindOrCreate(ctx context.Context, s Supplier) (Supplier, bool, error) {
	if err := ctx.Err(); err != nil {
		return Supplier{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.findLocked(s.Name); ok {
		return existing, false, nil
	}
	r.suppliers[s.ID] = clone(s)
	return clone(s), true, nil
}

// findLocked returns the oldest supplier whose folded name matches.
func (r *MemoryRepo) findLocked(name string) (Supplier, bool) {
	key := FoldName(name)
	var match *Supplier
	for _, s := range r.suppliers {
		if FoldName(s.Name) != key {
			continue
		}
		if match == nil || s.CreatedAt.Before(match.CreatedAt) {
			s := s
			match = &s
		}
	}
	if match == nil {
		return Supplier{}, false
	}
	return clone(*match), true
}

func (r *MemoryRepo) FillContacts(ctx context.Context, id string, c Contacts, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return ErrNotFound
	}
	if s.ContactEmail == "" {
		s.ContactEmail = c.Email
	}
	if s.ContactPhone == "" {
		s.ContactPhone = c.Phone
	}
	if s.ContactPerson == "" {
		s.ContactPerson = c.Person
	}
	s.UpdatedAt = at
	r.suppliers[id] = s
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Supplier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	search := FoldName(f.Search)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, 0)
	for _, s := range r.suppliers {
		if len(f.Tags) > 0 && !overlaps(s.CategoryTags, f.Tags) {
			continue
		}
		if search != "" && !strings.Contains(FoldName(s.Name), search) {
			continue
		}
		out = append(out, clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return FoldName(out[i].Name) < FoldName(out[j].Name) })
	return out, nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func clone(s Supplier) Supplier {
	s.CategoryTags = append([]string{}, s.CategoryTags...)
	return s
}

var _ Repo = (*MemoryRepo)(nil)
