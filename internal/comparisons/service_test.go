package comparisons

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"offertanalys/internal/categories"
	"offertanalys/internal/quotes"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type failingRepo struct{ *MemoryRepo }

func (failingRepo) Save(ctx context.Context, c Comparison) (Comparison, error) {
	return Comparison{}, errors.New("connection reset")
}

func newTestService(t *testing.T, reply string) (*Service, *MemoryRepo, *stubLLM) {
	t.Helper()
	ctx := context.Background()

	cats := categories.NewMemoryRepo()
	cats.PutProject(categories.Project{ID: "p-1", Name: "Villa Ek"})
	cats.PutCategory(categories.Category{ID: "cat-1", ProjectID: "p-1", Name: "Värme"})
	cats.PutCategory(categories.Category{ID: "cat-orphan", ProjectID: "p-missing", Name: "El"})
	cats.PutSpecification(categories.Specification{ID: "spec-1", CategoryID: "cat-1", Name: "Teknisk beskrivning", ExtractedText: "Radiatorer typ 22"})

	qs := quotes.NewMemoryRepo()
	for i, cq := range threeSuppliers() {
		data := cq.Data
		q := quotes.Quote{
			ID:           []string{"q-a", "q-b", "q-c"}[i],
			CategoryID:   "cat-1",
			SupplierName: cq.SupplierName,
			Status:       quotes.StatusAnalyzed,
			AIAnalysis:   &data,
			CreatedAt:    testNow,
			UpdatedAt:    testNow,
		}
		if err := qs.Create(ctx, q); err != nil {
			t.Fatalf("seed quote: %v", err)
		}
	}

	stub := &stubLLM{reply: reply}
	repo := NewMemoryRepo()
	svc := &Service{
		Engine:     &Engine{LLM: stub},
		Repo:       repo,
		Quotes:     qs,
		Categories: cats,
		Now:        func() time.Time { return testNow },
	}
	return svc, repo, stub
}

func TestCompareCategoryStoresResult(t *testing.T) {
	svc, repo, stub := newTestService(t, modelReply)

	out, err := svc.CompareCategory(context.Background(), CompareInput{
		CategoryID:      "cat-1",
		QuoteIDs:        []string{"q-a", "q-b", "q-c", "q-a"},
		SpecificationID: "spec-1",
	})
	if err != nil {
		t.Fatalf("CompareCategory: %v", err)
	}
	if len(out.QuoteIDs) != 3 {
		t.Fatalf("expected deduplicated ids, got %v", out.QuoteIDs)
	}
	if out.Result.PriceComparison.Ranking[0].Supplier != "C" {
		t.Fatalf("expected C cheapest after adjustment, got %+v", out.Result.PriceComparison.Ranking)
	}
	if !strings.Contains(stub.lastPrompt(), "Radiatorer typ 22") {
		t.Fatalf("specification text should reach the prompt")
	}
	stored, err := repo.GetByCategory(context.Background(), "cat-1")
	if err != nil || stored.ID != out.ID {
		t.Fatalf("expected stored comparison %s, got %+v %v", out.ID, stored, err)
	}
}

func TestCompareCategoryRecordsOnlyComparedQuotes(t *testing.T) {
	svc, _, _ := newTestService(t, modelReply)

	out, err := svc.CompareCategory(context.Background(), CompareInput{
		CategoryID: "cat-1",
		QuoteIDs:   []string{"q-a", "q-saknas", "q-b"},
	})
	if err != nil {
		t.Fatalf("CompareCategory: %v", err)
	}
	if len(out.QuoteIDs) != 2 || out.QuoteIDs[0] != "q-a" || out.QuoteIDs[1] != "q-b" {
		t.Fatalf("expected only found quotes, got %v", out.QuoteIDs)
	}
}

func TestCompareCategoryReplacesPreviousComparison(t *testing.T) {
	svc, repo, _ := newTestService(t, modelReply)
	ctx := context.Background()

	first, err := svc.CompareCategory(ctx, CompareInput{CategoryID: "cat-1", QuoteIDs: []string{"q-a", "q-b", "q-c"}})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CompareCategory(ctx, CompareInput{CategoryID: "cat-1", QuoteIDs: []string{"q-a", "q-b"}})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected one comparison per category, got %d", repo.Len())
	}
	latest, err := svc.Latest(ctx, "cat-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != first.ID || len(latest.QuoteIDs) != 2 || latest.QuoteIDs[1] != second.QuoteIDs[1] {
		t.Fatalf("expected the last write to win under the same id, got %+v", latest)
	}
}

func TestCompareCategoryFallsBackToUnknownProject(t *testing.T) {
	svc, _, stub := newTestService(t, modelReply)
	// The orphan category has no quotes of its own; the ids still resolve.
	if _, err := svc.CompareCategory(context.Background(), CompareInput{CategoryID: "cat-orphan", QuoteIDs: []string{"q-a", "q-b"}}); err != nil {
		t.Fatalf("CompareCategory: %v", err)
	}
	if !strings.Contains(stub.lastPrompt(), unknownProject) {
		t.Fatalf("expected fallback project name in prompt")
	}
}

func TestCompareCategorySaveFailureStillReturnsResult(t *testing.T) {
	svc, _, _ := newTestService(t, modelReply)
	svc.Repo = failingRepo{NewMemoryRepo()}

	out, err := svc.CompareCategory(context.Background(), CompareInput{CategoryID: "cat-1", QuoteIDs: []string{"q-a", "q-b"}})
	if err != nil {
		t.Fatalf("expected result despite save failure, got %v", err)
	}
	if len(out.Result.PriceComparison.Ranking) == 0 {
		t.Fatalf("expected ranking in result")
	}
}

func TestCompareCategoryValidation(t *testing.T) {
	svc, _, _ := newTestService(t, modelReply)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CompareInput
		want error
	}{
		{"missing category", CompareInput{QuoteIDs: []string{"q-a", "q-b"}}, ErrInvalidInput},
		{"one quote", CompareInput{CategoryID: "cat-1", QuoteIDs: []string{"q-a", " q-a "}}, ErrInvalidInput},
		{"unknown category", CompareInput{CategoryID: "nope", QuoteIDs: []string{"q-a", "q-b"}}, ErrNotFound},
		{"only one quote exists", CompareInput{CategoryID: "cat-1", QuoteIDs: []string{"q-a", "missing"}}, ErrComparisonFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CompareCategory(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestToComparisonQuoteRebuildsFromColumns(t *testing.T) {
	total := 4000.0
	qty := 2.0
	q := quotes.Quote{
		SupplierName: "Gamla Bygg",
		TotalAmount:  &total,
		PaymentTerms: "30 dagar",
		Items: []quotes.QuoteItem{
			{Description: "Radiator", Quantity: &qty, ProductCategory: "Radiatorer", TotalAmount: &total},
		},
	}
	cq := toComparisonQuote(q)
	if cq.Data.Totals.Total != 4000 || cq.Data.Terms.Payment != "30 dagar" {
		t.Fatalf("unexpected data %+v", cq.Data)
	}
	if len(cq.Data.Items) != 1 || cq.Data.Items[0].Category != "Radiatorer" || cq.Data.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", cq.Data.Items)
	}
	if cq.Data.Items[0].UnitPrice != 0 {
		t.Fatalf("missing unit price should stay zero")
	}
}

func TestSaveAndDelete(t *testing.T) {
	svc, repo, _ := newTestService(t, modelReply)
	ctx := context.Background()

	if _, err := svc.Save(ctx, Comparison{CategoryID: "cat-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without quote ids, got %v", err)
	}
	saved, err := svc.Save(ctx, Comparison{CategoryID: "cat-1", QuoteIDs: []string{"q-a"}, Result: ComparisonResult{Summary: "manuell"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" || !saved.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected saved comparison %+v", saved)
	}
	if err := svc.Delete(ctx, "cat-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("expected deletion")
	}
	if _, err := svc.Latest(ctx, "cat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "cat-1"); err != nil {
		t.Fatalf("Delete should be idempotent: %v", err)
	}
}
