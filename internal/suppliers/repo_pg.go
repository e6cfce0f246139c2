package suppliers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const supplierColumns = `id, name, org_number, category_tags, contact_email, contact_phone,
       contact_person, address, city, notes, rating, created_at, updated_at`

func (r *PGRepo) FindByName(ctx context.Context, name string) (Supplier, error) {
	query := `SELECT ` + supplierColumns + `
FROM suppliers
WHERE lower(name) = lower($1)
ORDER BY created_at ASC
LIMIT 1`
	s, err := scanSupplier(r.DB.QueryRowContext(ctx, query, strings.Join(strings.Fields(name), " ")), pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// FindOrCreate relies on the unique index on lower(name); a concurrent insert
// of the same name loses the race and reads the winner back.
func (r *PGRepo) FindOrCreate(ctx context.Context, s Supplier) (Supplier, bool, error) {
	tags := s.CategoryTags
	if tags == nil {
		tags = []string{}
	}
	query := `
INSERT INTO suppliers (
	id, name, org_number, category_tags, contact_email, contact_phone,
	contact_person, address, city, notes, rating, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT ((lower(name))) DO NOTHING
RETURNING ` + supplierColumns
	row := r.DB.QueryRowContext(ctx, query,
		s.ID,
		s.Name,
		nullString(s.OrgNumber),
		tags,
		nullString(s.ContactEmail),
		nullString(s.ContactPhone),
		nullString(s.ContactPerson),
		nullString(s.Address),
		nullString(s.City),
		nullString(s.Notes),
		nullFloat(s.Rating),
		s.CreatedAt,
		s.UpdatedAt,
	)
	stored, err := scanSupplier(row, pgtype.NewMap())
	switch {
	case err == nil:
		return stored, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.FindByName(ctx, s.Name)
		if err != nil {
			return Supplier{}, false, fmt.Errorf("load existing supplier: %w", err)
		}
		return existing, false, nil
	default:
		return Supplier{}, false, fmt.Errorf("insert supplier: %w", err)
	}
}

func (r *PGRepo) FillContacts(ctx context.Context, id string, c Contacts, at time.Time) error {
	const query = `
UPDATE suppliers
SET contact_email = COALESCE(NULLIF(contact_email, ''), $2),
    contact_phone = COALESCE(NULLIF(contact_phone, ''), $3),
    contact_person = COALESCE(NULLIF(contact_person, ''), $4),
    updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, nullString(c.Email), nullString(c.Phone), nullString(c.Person), at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, f ListFilter) ([]Supplier, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Tags) > 0 {
		args = append(args, f.Tags)
		where = append(where, fmt.Sprintf("category_tags && $%d::text[]", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY lower(name)`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// pgtype.Map is not safe for concurrent use; one per query.
	m := pgtype.NewMap()
	out := make([]Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows, m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupplier(row rowScanner, m *pgtype.Map) (Supplier, error) {
	var s Supplier
	var org, email, phone, person, address, city, notes sql.NullString
	var rating sql.NullFloat64
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&org,
		m.SQLScanner(&s.CategoryTags),
		&email,
		&phone,
		&person,
		&address,
		&city,
		&notes,
		&rating,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return Supplier{}, err
	}
	if s.CategoryTags == nil {
		s.CategoryTags = []string{}
	}
	s.OrgNumber = org.String
	s.ContactEmail = email.String
	s.ContactPhone = phone.String
	s.ContactPerson = person.String
	s.Address = address.String
	s.City = city.String
	s.Notes = notes.String
	if rating.Valid {
		v := rating.Float64
		s.Rating = &v
	}
	return s, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

var _ Repo = (*PGRepo)(nil)
