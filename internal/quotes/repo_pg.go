package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const quoteColumns = `id, category_id, supplier_name, quote_number, quote_date, valid_until,
       contact_person, contact_email, contact_phone, total_amount, currency, vat_included,
       payment_terms, delivery_terms, warranty_period, file_path, file_name, extracted_text,
       ai_summary, ai_analysis, status, notes, created_at, updated_at`

const itemColumns = `id, quote_id, position, article_number, description, quantity, unit, unit_price,
       discount_percent, total_amount, item_type, product_category, specifications, sort_order`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a quote and its items in one transaction.
func (r *PGRepo) Create(ctx context.Context, q Quote) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var analysis any
	if q.AIAnalysis != nil {
		b, err := json.Marshal(q.AIAnalysis)
		if err != nil {
			return err
		}
		analysis = string(b)
	}
	currency := q.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	const query = `
INSERT INTO quotes (
	id, category_id, supplier_name, quote_number, quote_date, valid_until,
	contact_person, contact_email, contact_phone, total_amount, currency, vat_included,
	payment_terms, delivery_terms, warranty_period, file_path, file_name, extracted_text,
	ai_summary, ai_analysis, status, notes, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	if _, err := tx.ExecContext(ctx, query,
		q.ID,
		q.CategoryID,
		q.SupplierName,
		nullString(q.QuoteNumber),
		nullString(q.QuoteDate),
		nullString(q.ValidUntil),
		nullString(q.ContactPerson),
		nullString(q.ContactEmail),
		nullString(q.ContactPhone),
		nullFloat(q.TotalAmount),
		currency,
		q.VATIncluded,
		nullString(q.PaymentTerms),
		nullString(q.DeliveryTerms),
		nullString(q.WarrantyPeriod),
		nullString(q.FilePath),
		nullString(q.FileName),
		nullString(q.ExtractedText),
		nullString(q.AISummary),
		analysis,
		q.Status,
		nullString(q.Notes),
		q.CreatedAt,
		q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}

	if err := insertItems(ctx, tx, q.ID, q.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns a quote with its items.
func (r *PGRepo) Get(ctx context.Context, id string) (Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	q, err := scanQuote(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, err
	}
	items, err := r.itemsFor(ctx, []string{id})
	if err != nil {
		return Quote{}, err
	}
	q.Items = nonNilItems(items[id])
	return q, nil
}

// ListByIDs returns the quotes that exist, in the order of ids.
func (r *PGRepo) ListByIDs(ctx context.Context, ids []string) ([]Quote, error) {
	if len(ids) == 0 {
		return []Quote{}, nil
	}
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ANY($1::uuid[])`
	found, err := r.queryQuotes(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Quote, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	out := make([]Quote, 0, len(found))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
			delete(byID, id)
		}
	}
	return r.attachItems(ctx, out)
}

// ListByCategory returns a category's quotes with items, newest first.
func (r *PGRepo) ListByCategory(ctx context.Context, categoryID string) ([]Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE category_id = $1 ORDER BY created_at DESC`
	out, err := r.queryQuotes(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, out)
}

func (r *PGRepo) ListPending(ctx context.Context, since time.Time, limit int) ([]Quote, error) {
	if limit <= 0 {
		limit = 25
	}
	query := `SELECT ` + quoteColumns + `
FROM quotes
WHERE status = 'pending'
  AND created_at >= $1
  AND (file_path IS NOT NULL OR extracted_text IS NOT NULL)
ORDER BY created_at ASC
LIMIT $2`
	return r.queryQuotes(ctx, query, since, limit)
}

func (r *PGRepo) UpdateExtractedText(ctx context.Context, id, text string, at time.Time) error {
	const query = `UPDATE quotes SET extracted_text = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, text, at)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateAnalysis writes normalized fields and marks the quote analyzed.
func (r *PGRepo) UpdateAnalysis(ctx context.Context, id string, upd AnalysisUpdate) error {
	analysis, err := json.Marshal(upd.AIAnalysis)
	if err != nil {
		return err
	}
	const query = `
UPDATE quotes
SET supplier_name = $2,
    quote_number = $3,
    quote_date = $4,
    valid_until = $5,
    contact_person = $6,
    contact_email = $7,
    contact_phone = $8,
    total_amount = $9,
    vat_included = false,
    payment_terms = $10,
    delivery_terms = $11,
    warranty_period = $12,
    ai_summary = $13,
    ai_analysis = $14,
    status = 'analyzed',
    updated_at = $15
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		id,
		upd.SupplierName,
		nullString(upd.QuoteNumber),
		nullString(upd.QuoteDate),
		nullString(upd.ValidUntil),
		nullString(upd.ContactPerson),
		nullString(upd.ContactEmail),
		nullString(upd.ContactPhone),
		nullFloat(upd.TotalAmount),
		nullString(upd.PaymentTerms),
		nullString(upd.DeliveryTerms),
		nullString(upd.WarrantyPeriod),
		nullString(upd.AISummary),
		string(analysis),
		upd.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ReplaceItems swaps the quote's items inside a transaction.
func (r *PGRepo) ReplaceItems(ctx context.Context, quoteID string, items []QuoteItem) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("delete quote items: %w", err)
	}
	if err := insertItems(ctx, tx, quoteID, items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	const query = `UPDATE quotes SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func insertItems(ctx context.Context, db execer, quoteID string, items []QuoteItem) error {
	const query = `
INSERT INTO quote_items (
	id, quote_id, position, article_number, description, quantity, unit, unit_price,
	discount_percent, total_amount, item_type, product_category, specifications, sort_order
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		unit := item.Unit
		if unit == "" {
			unit = "ST"
		}
		var specs any
		if item.Specifications != nil {
			b, err := json.Marshal(item.Specifications)
			if err != nil {
				return err
			}
			specs = string(b)
		}
		if _, err := db.ExecContext(ctx, query,
			id,
			quoteID,
			nullString(item.Position),
			nullString(item.ArticleNumber),
			item.Description,
			nullFloat(item.Quantity),
			unit,
			nullFloat(item.UnitPrice),
			nullFloat(item.DiscountPercent),
			nullFloat(item.TotalAmount),
			nullString(item.ItemType),
			nullString(item.ProductCategory),
			specs,
			item.SortOrder,
		); err != nil {
			return fmt.Errorf("insert quote item %d: %w", item.SortOrder, err)
		}
	}
	return nil
}

func (r *PGRepo) queryQuotes(ctx context.Context, query string, args ...any) ([]Quote, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *PGRepo) attachItems(ctx context.Context, quotes []Quote) ([]Quote, error) {
	if len(quotes) == 0 {
		return quotes, nil
	}
	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		quotes[i].Items = nonNilItems(items[quotes[i].ID])
	}
	return quotes, nil
}

func (r *PGRepo) itemsFor(ctx context.Context, quoteIDs []string) (map[string][]QuoteItem, error) {
	query := `SELECT ` + itemColumns + ` FROM quote_items WHERE quote_id = ANY($1::uuid[]) ORDER BY quote_id, sort_order`
	rows, err := r.DB.QueryContext(ctx, query, quoteIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]QuoteItem)
	for rows.Next() {
		var item QuoteItem
		var position, article, itemType, category sql.NullString
		var quantity, unitPrice, discount, total sql.NullFloat64
		var specs []byte
		if err := rows.Scan(
			&item.ID,
			&item.QuoteID,
			&position,
			&article,
			&item.Description,
			&quantity,
			&item.Unit,
			&unitPrice,
			&discount,
			&total,
			&itemType,
			&category,
			&specs,
			&item.SortOrder,
		); err != nil {
			return nil, err
		}
		item.Position = position.String
		item.ArticleNumber = article.String
		item.ItemType = itemType.String
		item.ProductCategory = category.String
		item.Quantity = floatPtr(quantity)
		item.UnitPrice = floatPtr(unitPrice)
		item.DiscountPercent = floatPtr(discount)
		item.TotalAmount = floatPtr(total)
		if len(specs) > 0 {
			var s ItemSpecifications
			if err := json.Unmarshal(specs, &s); err == nil {
				item.Specifications = &s
			}
		}
		out[item.QuoteID] = append(out[item.QuoteID], item)
	}
	return out, rows.Err()
}

func scanQuote(row rowScanner) (Quote, error) {
	var q Quote
	var quoteNumber, contactPerson, contactEmail, contactPhone sql.NullString
	var paymentTerms, deliveryTerms, warranty, filePath, fileName sql.NullString
	var extractedText, aiSummary, notes sql.NullString
	var quoteDate, validUntil sql.NullTime
	var total sql.NullFloat64
	var analysis []byte
	if err := row.Scan(
		&q.ID,
		&q.CategoryID,
		&q.SupplierName,
		&quoteNumber,
		&quoteDate,
		&validUntil,
		&contactPerson,
		&contactEmail,
		&contactPhone,
		&total,
		&q.Currency,
		&q.VATIncluded,
		&paymentTerms,
		&deliveryTerms,
		&warranty,
		&filePath,
		&fileName,
		&extractedText,
		&aiSummary,
		&analysis,
		&q.Status,
		&notes,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return Quote{}, err
	}
	q.QuoteNumber = quoteNumber.String
	q.QuoteDate = formatDate(quoteDate)
	q.ValidUntil = formatDate(validUntil)
	q.ContactPerson = contactPerson.String
	q.ContactEmail = contactEmail.String
	q.ContactPhone = contactPhone.String
	q.TotalAmount = floatPtr(total)
	q.PaymentTerms = paymentTerms.String
	q.DeliveryTerms = deliveryTerms.String
	q.WarrantyPeriod = warranty.String
	q.FilePath = filePath.String
	q.FileName = fileName.String
	q.ExtractedText = extractedText.String
	q.AISummary = aiSummary.String
	q.Notes = notes.String
	if len(analysis) > 0 {
		var a ExtractedQuote
		if err := json.Unmarshal(analysis, &a); err != nil {
			return Quote{}, fmt.Errorf("decode ai_analysis for quote %s: %w", q.ID, err)
		}
		q.AIAnalysis = &a
	}
	return q, nil
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

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func formatDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02")
}

func nonNilItems(items []QuoteItem) []QuoteItem {
	if items == nil {
		return []QuoteItem{}
	}
	return items
}

var _ Repo = (*PGRepo)(nil)
