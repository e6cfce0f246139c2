package comparisons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"offertanalys/internal/categories"
	"offertanalys/internal/quotes"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/telemetry"
)

const unknownProject = "Okänt projekt"

type QuoteSource interface {
	ListByIDs(ctx context.Context, ids []string) ([]quotes.Quote, error)
}

type CategorySource interface {
	GetCategory(ctx context.Context, id string) (categories.Category, error)
	GetSpecification(ctx context.Context, id string) (categories.Specification, error)
}

// Service runs and stores comparisons.
type Service struct {
	Engine     *Engine
	Repo       Repo
	Quotes     QuoteSource
	Categories CategorySource
	Now        func() time.Time
}

type CompareInput struct {
	CategoryID        string
	QuoteIDs          []string
	SpecificationID   string
	SpecificationText string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CompareCategory compares the given quotes of a category and stores the
// result as the category's comparison. A failed save is logged and the
// result is still returned.
func (s *Service) CompareCategory(ctx context.Context, in CompareInput) (Comparison, error) {
	categoryID := strings.TrimSpace(in.CategoryID)
	ids := uniqueIDs(in.QuoteIDs)
	if categoryID == "" {
		return Comparison{}, fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	if len(ids) < 2 {
		return Comparison{}, fmt.Errorf("%w: at least two quotes are required", ErrInvalidInput)
	}

	category, err := s.Categories.GetCategory(ctx, categoryID)
	if errors.Is(err, categories.ErrNotFound) {
		return Comparison{}, ErrNotFound
	}
	if err != nil {
		return Comparison{}, fmt.Errorf("load category: %w", err)
	}
	projectName := category.ProjectName
	if strings.TrimSpace(projectName) == "" {
		projectName = unknownProject
	}

	found, err := s.Quotes.ListByIDs(ctx, ids)
	if err != nil {
		return Comparison{}, fmt.Errorf("load quotes: %w", err)
	}
	input := make([]ComparisonQuote, 0, len(found))
	compared := make([]string, 0, len(found))
	for _, q := range found {
		input = append(input, toComparisonQuote(q))
		compared = append(compared, q.ID)
	}

	specText := s.specificationText(ctx, in)

	res, err := s.Engine.Compare(ctx, projectName, category.Name, input, specText)
	if err != nil {
		metrics.IncComparison("failed")
		telemetry.Warn("compare.failed", map[string]any{
			"category_id": categoryID,
			"quotes":      len(input),
			"error":       err,
		})
		return Comparison{}, err
	}

	now := s.now()
	c := Comparison{
		ID:              uuid.NewString(),
		CategoryID:      categoryID,
		SpecificationID: strings.TrimSpace(in.SpecificationID),
		QuoteIDs:        compared,
		Result:          res,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	saved, err := s.Repo.Save(ctx, c)
	if err != nil {
		metrics.IncComparison("save_failed")
		telemetry.Error("compare.save_failed", map[string]any{"category_id": categoryID, "error": err})
		return c, nil
	}
	metrics.IncComparison("success")
	telemetry.Info("compare.complete", map[string]any{
		"category_id":   categoryID,
		"comparison_id": saved.ID,
		"quotes":        len(input),
	})
	return saved, nil
}

func (s *Service) specificationText(ctx context.Context, in CompareInput) string {
	if text := strings.TrimSpace(in.SpecificationText); text != "" {
		return text
	}
	id := strings.TrimSpace(in.SpecificationID)
	if id == "" || s.Categories == nil {
		return ""
	}
	spec, err := s.Categories.GetSpecification(ctx, id)
	if err != nil {
		telemetry.Warn("compare.specification_unavailable", map[string]any{"specification_id": id, "error": err})
		return ""
	}
	return spec.ExtractedText
}

// toComparisonQuote prefers the stored analysis and otherwise rebuilds the
// total, items and terms from the quote's own columns.
func toComparisonQuote(q quotes.Quote) ComparisonQuote {
	if q.AIAnalysis != nil {
		return ComparisonQuote{SupplierName: q.SupplierName, Data: *q.AIAnalysis}
	}
	data := quotes.ExtractedQuote{
		Supplier: quotes.SupplierInfo{Name: q.SupplierName},
		Terms: quotes.Terms{
			Payment:         q.PaymentTerms,
			Delivery:        q.DeliveryTerms,
			Warranty:        q.WarrantyPeriod,
			OtherConditions: []string{},
		},
		Items:       make([]quotes.LineItem, 0, len(q.Items)),
		Included:    []string{},
		NotIncluded: []string{},
		Options:     []string{},
		Notes:       []string{},
	}
	if q.TotalAmount != nil {
		data.Totals.Total = *q.TotalAmount
	}
	for _, item := range q.Items {
		data.Items = append(data.Items, quotes.LineItem{
			Position:        item.Position,
			ArticleNumber:   item.ArticleNumber,
			Description:     item.Description,
			Quantity:        value(item.Quantity),
			Unit:            item.Unit,
			UnitPrice:       value(item.UnitPrice),
			DiscountPercent: value(item.DiscountPercent),
			Total:           value(item.TotalAmount),
			Type:            item.ItemType,
			Category:        item.ProductCategory,
			Specifications:  item.Specifications,
		})
	}
	return ComparisonQuote{SupplierName: q.SupplierName, Data: data}
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Save stores a comparison produced elsewhere, replacing the category's previous one.
func (s *Service) Save(ctx context.Context, c Comparison) (Comparison, error) {
	c.CategoryID = strings.TrimSpace(c.CategoryID)
	if c.CategoryID == "" {
		return Comparison{}, fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	c.QuoteIDs = uniqueIDs(c.QuoteIDs)
	if len(c.QuoteIDs) == 0 {
		return Comparison{}, fmt.Errorf("%w: quoteIds are required", ErrInvalidInput)
	}
	now := s.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.Repo.Save(ctx, c)
}

// Latest returns the category's comparison re-ranked, or ErrNotFound.
func (s *Service) Latest(ctx context.Context, categoryID string) (Comparison, error) {
	if strings.TrimSpace(categoryID) == "" {
		return Comparison{}, fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	c, err := s.Repo.GetByCategory(ctx, categoryID)
	if err != nil {
		return Comparison{}, err
	}
	Rank(&c.Result)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	return s.Repo.DeleteByCategory(ctx, categoryID)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
