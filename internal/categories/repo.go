package categories

import "context"

type Repo interface {
	// GetCategory returns the category with its project name filled in.
	GetCategory(ctx context.Context, id string) (Category, error)
	SelectQuote(ctx context.Context, categoryID, quoteID string) error
	// ClearSelectedQuote unsets the selection only while it still points at quoteID.
	ClearSelectedQuote(ctx context.Context, categoryID, quoteID string) error
	GetSpecification(ctx context.Context, id string) (Specification, error)
	SetSpecificationText(ctx context.Context, id, text string) error
}
