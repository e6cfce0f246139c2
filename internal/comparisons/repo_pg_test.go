package comparisons

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

type passthroughConverter struct{}

func (passthroughConverter) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthroughConverter{}))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoSaveUpsertsByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ON CONFLICT \\(category_id\\) DO UPDATE").
		WithArgs("cmp-new", "cat-1", nil, []string{"q-a", "q-b"}, sqlmock.AnyArg(), now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("cmp-old", created, now))

	out, err := repo.Save(context.Background(), Comparison{
		ID:         "cmp-new",
		CategoryID: "cat-1",
		QuoteIDs:   []string{"q-a", "q-b"},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out.ID != "cmp-old" || !out.CreatedAt.Equal(created) {
		t.Fatalf("expected the existing row to be kept, got %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM comparisons").
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "specification_id", "quote_ids", "result", "created_at", "updated_at"}).
			AddRow("cmp-1", "cat-1", "spec-1", "{q-a,q-b}", []byte(`{"summary":"ok","price_comparison":{"ranking":[{"supplier":"A","total":100}]}}`), now, now))

	c, err := repo.GetByCategory(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("GetByCategory: %v", err)
	}
	if c.SpecificationID != "spec-1" || len(c.QuoteIDs) != 2 || c.QuoteIDs[1] != "q-b" {
		t.Fatalf("unexpected comparison %+v", c)
	}
	if c.Result.Summary != "ok" || c.Result.PriceComparison.Ranking[0].Total == nil {
		t.Fatalf("unexpected result %+v", c.Result)
	}
}

func TestPGRepoGetByCategoryNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM comparisons").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByCategory(context.Background(), "cat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM comparisons WHERE category_id").
		WithArgs("cat-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByCategory(context.Background(), "cat-1"); err != nil {
		t.Fatalf("DeleteByCategory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
