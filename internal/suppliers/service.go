package suppliers

import (
	"context"
	"strings"
)

// Service contains business logic for suppliers.
type Service struct {
	Repo Repo
}

// List returns suppliers whose tags overlap tags and whose name contains search.
func (s *Service) List(ctx context.Context, tags []string, search string) ([]Supplier, error) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return s.Repo.List(ctx, ListFilter{Tags: clean, Search: strings.TrimSpace(search)})
}
