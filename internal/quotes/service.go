package quotes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"offertanalys/internal/extract"
	"offertanalys/internal/llm"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/storage/object"
	"offertanalys/internal/shared/telemetry"
	"offertanalys/internal/shared/util"
)

const (
	DefaultQuoteTimeout = 300 * time.Second
	// DefaultSweepWindow bounds how far back the pending sweep looks.
	DefaultSweepWindow = 24 * time.Hour
)

// TextExtractor recovers plain text from quote documents.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileName string) (extract.Result, error)
	ExtractFromStore(ctx context.Context, store object.BlobStore, path, fileName string) (extract.Result, error)
}

// SupplierReconciler records the supplier printed on an analyzed quote.
// Implementations must not fail the analysis; errors are theirs to log.
type SupplierReconciler interface {
	Reconcile(ctx context.Context, info SupplierInfo)
}

// CategorySelector tracks which quote a category has selected.
type CategorySelector interface {
	SelectQuote(ctx context.Context, categoryID, quoteID string) error
	ClearSelectedQuote(ctx context.Context, categoryID, quoteID string) error
}

// Service contains business logic for quotes.
type Service struct {
	Repo         Repo
	Store        object.BlobStore
	Extractor    TextExtractor
	LLM          llm.Completer
	MaxTokens    int
	Suppliers    SupplierReconciler
	Categories   CategorySelector
	QuoteTimeout time.Duration
	Now          func() time.Time
}

// UploadInput is a quote document received from a user.
type UploadInput struct {
	CategoryID   string
	SupplierName string
	FileName     string
	Data         []byte
	Analyze      bool
}

// UploadResult is the stored quote. AnalysisError is set when inline
// analysis was requested and failed; the quote then stays pending.
type UploadResult struct {
	Quote         Quote  `json:"quote"`
	AnalysisError string `json:"analysisError,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) quoteTimeout() time.Duration {
	if s.QuoteTimeout > 0 {
		return s.QuoteTimeout
	}
	return DefaultQuoteTimeout
}

func (s *Service) normalizer(fields map[string]any) *Normalizer {
	return &Normalizer{LLM: llm.WithRetry(s.LLM, fields), MaxTokens: s.MaxTokens}
}

// NormalizeOne normalizes raw quote text without touching storage.
func (s *Service) NormalizeOne(ctx context.Context, text string) (ExtractedQuote, error) {
	if strings.TrimSpace(text) == "" {
		return ExtractedQuote{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	return s.normalizer(map[string]any{"op": "normalize_one"}).Normalize(ctx, text)
}

// AnalyzeBatch normalizes the given quotes one at a time. A failing quote is
// recorded in the result and never stops the rest of the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, ids []string, reanalyze bool) BatchResult {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { metrics.ObserveBatch(time.Since(start)) }()

	res := BatchResult{Errors: []string{}}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return res
	}

	found, err := s.Repo.ListByIDs(ctx, ids)
	if err != nil {
		telemetry.Error("batch.load_failed", map[string]any{"error": err, "batch_size": len(ids)})
		res.Failed = len(ids)
		res.Errors = append(res.Errors, "could not load quotes: "+err.Error())
		return res
	}

	for _, q := range found {
		if !reanalyze && q.Status != StatusPending {
			continue
		}
		if err := s.analyzeQuote(ctx, q); err != nil {
			reason := failureReason(err)
			res.Failed++
			res.Errors = append(res.Errors, supplierLabel(q)+": "+reason)
			metrics.IncQuoteFailed()
			telemetry.Warn("batch.quote.failed", map[string]any{
				"quote_id":    q.ID,
				"category_id": q.CategoryID,
				"code":        errorCode(err),
				"reason":      reason,
				"error":       err,
			})
			continue
		}
		res.Success++
		metrics.IncQuoteAnalyzed()
	}

	telemetry.Info("batch.complete", map[string]any{
		"batch_size":  len(ids),
		"success":     res.Success,
		"failed":      res.Failed,
		"reanalyze":   reanalyze,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res
}

func (s *Service) analyzeQuote(ctx context.Context, q Quote) error {
	ctx, cancel := context.WithTimeout(ctx, s.quoteTimeout())
	defer cancel()

	text := q.ExtractedText
	if strings.TrimSpace(text) == "" && q.FilePath != "" {
		healed, err := s.healText(ctx, q)
		if err != nil {
			return &AnalysisError{Code: ErrorCodeExtraction, Reason: "could not extract text", Err: err}
		}
		text = healed
	}
	if strings.TrimSpace(text) == "" {
		return &AnalysisError{Code: ErrorCodeValidation, Reason: "no extracted text"}
	}

	data, err := s.normalizer(map[string]any{"quote_id": q.ID}).Normalize(ctx, text)
	if err != nil {
		return err
	}

	upd := buildAnalysisUpdate(q, data, s.now())
	if err := s.Repo.UpdateAnalysis(ctx, q.ID, upd); err != nil {
		return &AnalysisError{Code: ErrorCodeStorage, Reason: "could not save analysis", Err: err}
	}
	if err := s.Repo.ReplaceItems(ctx, q.ID, toQuoteItems(q.ID, data.Items)); err != nil {
		return &AnalysisError{Code: ErrorCodeStorage, Reason: "could not save line items", Err: err}
	}

	if s.Suppliers != nil {
		info := data.Supplier
		info.Name = upd.SupplierName
		if strings.TrimSpace(info.Name) != "" {
			s.Suppliers.Reconcile(ctx, info)
		}
	}
	return nil
}

// healText extracts and caches text for a quote stored without any.
func (s *Service) healText(ctx context.Context, q Quote) (string, error) {
	if s.Extractor == nil || s.Store == nil {
		return "", errors.New("document extraction not configured")
	}
	res, err := s.Extractor.ExtractFromStore(ctx, s.Store, q.FilePath, q.FileName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", extract.ErrExtractionFailed
	}
	if err := s.Repo.UpdateExtractedText(ctx, q.ID, res.Text, s.now()); err != nil {
		return "", err
	}
	telemetry.Info("batch.text_healed", map[string]any{
		"quote_id": q.ID,
		"strategy": res.Strategy,
		"chars":    len(res.Text),
	})
	return res.Text, nil
}

func buildAnalysisUpdate(q Quote, data ExtractedQuote, now time.Time) AnalysisUpdate {
	name := strings.TrimSpace(data.Supplier.Name)
	if name == "" {
		name = q.SupplierName
	}
	summaryName := name
	if summaryName == "" {
		summaryName = "Offert"
	}
	total := data.Totals.Total
	return AnalysisUpdate{
		SupplierName:   name,
		QuoteNumber:    strings.TrimSpace(data.QuoteInfo.QuoteNumber),
		QuoteDate:      normalizeDate(strings.TrimSpace(data.QuoteInfo.Date)),
		ValidUntil:     normalizeDate(strings.TrimSpace(data.QuoteInfo.ValidUntil)),
		ContactPerson:  strings.TrimSpace(data.Supplier.ContactPerson),
		ContactEmail:   strings.TrimSpace(data.Supplier.Email),
		ContactPhone:   strings.TrimSpace(data.Supplier.Phone),
		TotalAmount:    &total,
		PaymentTerms:   strings.TrimSpace(data.Terms.Payment),
		DeliveryTerms:  strings.TrimSpace(data.Terms.Delivery),
		WarrantyPeriod: strings.TrimSpace(data.Terms.Warranty),
		AISummary:      fmt.Sprintf("%s - %d artiklar", summaryName, len(data.Items)),
		AIAnalysis:     data,
		UpdatedAt:      now,
	}
}

func toQuoteItems(quoteID string, items []LineItem) []QuoteItem {
	out := make([]QuoteItem, 0, len(items))
	for i, item := range items {
		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = "ST"
		}
		out = append(out, QuoteItem{
			ID:              uuid.NewString(),
			QuoteID:         quoteID,
			Position:        item.Position,
			ArticleNumber:   item.ArticleNumber,
			Description:     item.Description,
			Quantity:        optional(item.Quantity),
			Unit:            unit,
			UnitPrice:       optional(item.UnitPrice),
			DiscountPercent: optional(item.DiscountPercent),
			TotalAmount:     optional(item.Total),
			ItemType:        item.Type,
			ProductCategory: item.Category,
			Specifications:  item.Specifications,
			SortOrder:       i,
		})
	}
	return out
}

func optional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// Upload stores a quote document, extracts its text and records it as
// pending. With Analyze set the quote is normalized right away.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		return UploadResult{}, fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !extract.Supported(fileName) {
		return UploadResult{}, fmt.Errorf("%w: .%s", extract.ErrUnsupportedFormat, util.FileExt(fileName))
	}
	if len(in.Data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	path, err := s.Store.Upload(ctx, in.Data, fileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store quote file: %w", err)
	}

	var text string
	if s.Extractor != nil {
		res, err := s.Extractor.Extract(ctx, in.Data, fileName)
		if err != nil {
			telemetry.Warn("upload.extract_failed", map[string]any{
				"category_id": categoryID,
				"file_name":   fileName,
				"error":       err,
			})
		} else {
			text = res.Text
		}
	}

	supplier := strings.TrimSpace(in.SupplierName)
	if supplier == "" {
		supplier = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	now := s.now()
	q := Quote{
		ID:            uuid.NewString(),
		CategoryID:    categoryID,
		SupplierName:  supplier,
		Currency:      defaultCurrency,
		Status:        StatusPending,
		FilePath:      path,
		FileName:      fileName,
		ExtractedText: text,
		Items:         []QuoteItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, q); err != nil {
		if delErr := s.Store.Delete(context.WithoutCancel(ctx), path); delErr != nil {
			telemetry.Error("upload.orphaned_file", map[string]any{
				"category_id": categoryID,
				"path":        path,
				"error":       delErr,
			})
		}
		return UploadResult{}, err
	}
	telemetry.Info("upload.stored", map[string]any{
		"quote_id":    q.ID,
		"category_id": categoryID,
		"chars":       len(text),
	})

	out := UploadResult{Quote: q}
	if !in.Analyze {
		return out, nil
	}
	if err := s.analyzeQuote(ctx, q); err != nil {
		out.AnalysisError = failureReason(err)
		telemetry.Warn("upload.analysis_failed", map[string]any{
			"quote_id": q.ID,
			"code":     errorCode(err),
			"error":    err,
		})
		return out, nil
	}
	metrics.IncQuoteAnalyzed()
	if analyzed, err := s.Repo.Get(ctx, q.ID); err == nil {
		out.Quote = analyzed
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, categoryID string) ([]Quote, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	return s.Repo.ListByCategory(ctx, categoryID)
}

func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	if strings.TrimSpace(id) == "" {
		return Quote{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, id)
}

// SetStatus changes a quote's status. Selecting a quote records it on its
// category; moving a selected quote elsewhere clears that record.
func (s *Service) SetStatus(ctx context.Context, id, status string) (Quote, error) {
	if !ValidStatus(status) {
		return Quote{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	q, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	now := s.now()
	if err := s.Repo.UpdateStatus(ctx, id, status, now); err != nil {
		return Quote{}, err
	}

	if s.Categories != nil {
		switch {
		case status == StatusSelected:
			err = s.Categories.SelectQuote(ctx, q.CategoryID, q.ID)
		case q.Status == StatusSelected:
			err = s.Categories.ClearSelectedQuote(ctx, q.CategoryID, q.ID)
		}
		if err != nil {
			return Quote{}, fmt.Errorf("update category selection: %w", err)
		}
	}

	q.Status = status
	q.UpdatedAt = now
	return q, nil
}

// SweepPending analyzes pending quotes created within window that have a
// file or text.
func (s *Service) SweepPending(ctx context.Context, window time.Duration, limit int) (BatchResult, error) {
	if window <= 0 {
		window = DefaultSweepWindow
	}
	pending, err := s.Repo.ListPending(ctx, s.now().Add(-window), limit)
	if err != nil {
		return BatchResult{}, err
	}
	if len(pending) == 0 {
		return BatchResult{Errors: []string{}}, nil
	}
	ids := make([]string, 0, len(pending))
	for _, q := range pending {
		ids = append(ids, q.ID)
	}
	return s.AnalyzeBatch(ctx, ids, false), nil
}

func dedupeIDs(ids []string) []string {
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

func supplierLabel(q Quote) string {
	if name := strings.TrimSpace(q.SupplierName); name != "" {
		return name
	}
	return q.ID
}

func failureReason(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "unknown error"
}

func errorCode(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return ErrorCodeInternal
}
