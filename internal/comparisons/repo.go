package comparisons

import "context"

type Repo interface {
	// Save inserts or replaces the comparison of c.CategoryID and returns the stored row.
	Save(ctx context.Context, c Comparison) (Comparison, error)
	GetByCategory(ctx context.Context, categoryID string) (Comparison, error)
	// DeleteByCategory succeeds when nothing is stored.
	DeleteByCategory(ctx context.Context, categoryID string) error
}
