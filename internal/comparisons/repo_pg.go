package comparisons

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Save(ctx context.Context, c Comparison) (Comparison, error) {
	result, err := json.Marshal(c.Result)
	if err != nil {
		return Comparison{}, fmt.Errorf("encode comparison result: %w", err)
	}
	quoteIDs := c.QuoteIDs
	if quoteIDs == nil {
		quoteIDs = []string{}
	}
	var specID any
	if c.SpecificationID != "" {
		specID = c.SpecificationID
	}

	const query = `
INSERT INTO comparisons (id, category_id, specification_id, quote_ids, result, created_at, updated_at)
VALUES ($1, $2, $3, $4::uuid[], $5, $6, $7)
ON CONFLICT (category_id) DO UPDATE
SET specification_id = EXCLUDED.specification_id,
    quote_ids = EXCLUDED.quote_ids,
    result = EXCLUDED.result,
    updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`
	err = r.DB.QueryRowContext(ctx, query,
		c.ID,
		c.CategoryID,
		specID,
		quoteIDs,
		string(result),
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comparison{}, fmt.Errorf("upsert comparison: %w", err)
	}
	c.QuoteIDs = quoteIDs
	return c, nil
}

func (r *PGRepo) GetByCategory(ctx context.Context, categoryID string) (Comparison, error) {
	const query = `
SELECT id, category_id, specification_id, quote_ids, result, created_at, updated_at
FROM comparisons
WHERE category_id = $1`
	var c Comparison
	var specID sql.NullString
	var result []byte
	m := pgtype.NewMap()
	err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(
		&c.ID,
		&c.CategoryID,
		&specID,
		m.SQLScanner(&c.QuoteIDs),
		&result,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Comparison{}, ErrNotFound
	}
	if err != nil {
		return Comparison{}, err
	}
	c.SpecificationID = specID.String
	if c.QuoteIDs == nil {
		c.QuoteIDs = []string{}
	}
	if err := json.Unmarshal(result, &c.Result); err != nil {
		return Comparison{}, fmt.Errorf("decode comparison result: %w", err)
	}
	return c, nil
}

func (r *PGRepo) DeleteByCategory(ctx context.Context, categoryID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM comparisons WHERE category_id = $1`, categoryID)
	return err
}

var _ Repo = (*PGRepo)(nil)
