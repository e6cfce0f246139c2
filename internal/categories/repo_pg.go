package categories

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) GetCategory(ctx context.Context, id string) (Category, error) {
	const query = `
SELECT c.id, c.project_id, COALESCE(p.name, ''), c.name, c.selected_quote_id
FROM quote_categories c
LEFT JOIN projects p ON p.id = c.project_id
WHERE c.id = $1`
	var c Category
	var selected sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.ProjectID, &c.ProjectName, &c.Name, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	c.SelectedQuoteID = selected.String
	return c, nil
}

func (r *PGRepo) SelectQuote(ctx context.Context, categoryID, quoteID string) error {
	const query = `UPDATE quote_categories SET selected_quote_id = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, categoryID, quoteID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) ClearSelectedQuote(ctx context.Context, categoryID, quoteID string) error {
	const query = `UPDATE quote_categories SET selected_quote_id = NULL WHERE id = $1 AND selected_quote_id = $2`
	_, err := r.DB.ExecContext(ctx, query, categoryID, quoteID)
	return err
}

func (r *PGRepo) GetSpecification(ctx context.Context, id string) (Specification, error) {
	const query = `
SELECT id, category_id, project_id, name, extracted_text
FROM specifications
WHERE id = $1`
	var s Specification
	var categoryID, projectID, text sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &categoryID, &projectID, &s.Name, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return Specification{}, ErrNotFound
	}
	if err != nil {
		return Specification{}, err
	}
	s.CategoryID = categoryID.String
	s.ProjectID = projectID.String
	s.ExtractedText = text.String
	return s, nil
}

func (r *PGRepo) SetSpecificationText(ctx context.Context, id, text string) error {
	const query = `UPDATE specifications SET extracted_text = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, text)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
