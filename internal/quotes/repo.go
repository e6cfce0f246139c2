package quotes

import (
	"context"
	"time"
)

// Repo defines persistence operations for quotes and their line items.
type Repo interface {
	Create(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
	ListByIDs(ctx context.Context, ids []string) ([]Quote, error)
	ListByCategory(ctx context.Context, categoryID string) ([]Quote, error)
	// ListPending returns pending quotes created after since that have a file or text, oldest first.
	ListPending(ctx context.Context, since time.Time, limit int) ([]Quote, error)
	UpdateExtractedText(ctx context.Context, id, text string, at time.Time) error
	UpdateAnalysis(ctx context.Context, id string, upd AnalysisUpdate) error
	// ReplaceItems deletes every item of the quote and inserts items in order.
	ReplaceItems(ctx context.Context, quoteID string, items []QuoteItem) error
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
}
