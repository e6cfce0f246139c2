package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"offertanalys/internal/llm"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/telemetry"
)

const DefaultMaxTokens = 32000

// Normalizer turns extracted document text into an ExtractedQuote.
type Normalizer struct {
	LLM       llm.Completer
	MaxTokens int
}

// Normalize calls the model with the extraction prompt and coerces its reply.
// Every failure is an *AnalysisError.
func (n *Normalizer) Normalize(ctx context.Context, rawText string) (ExtractedQuote, error) {
	if strings.TrimSpace(rawText) == "" {
		return ExtractedQuote{}, &AnalysisError{Code: ErrorCodeValidation, Reason: "no extracted text"}
	}
	if n.LLM == nil {
		return ExtractedQuote{}, &AnalysisError{Code: ErrorCodeInternal, Reason: "AI service not configured", Err: llm.ErrNotImplemented}
	}
	maxTokens := n.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	start := time.Now()
	raw, err := n.LLM.Complete(ctx, BuildExtractionPrompt(rawText), maxTokens)
	metrics.ObserveLLM("normalize", time.Since(start))
	if err != nil {
		code := ErrorCodeInternal
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "timeout") {
			code = ErrorCodeLLMTimeout
		}
		return ExtractedQuote{}, &AnalysisError{
			Code:      code,
			Reason:    "AI request failed",
			Retryable: !errors.Is(err, llm.ErrNotImplemented),
			Err:       err,
		}
	}

	q, err := coerceExtraction(raw)
	if err != nil {
		telemetry.Warn("normalize.schema_mismatch", map[string]any{
			"error":   err,
			"snippet": llm.Snippet(raw),
		})
		return ExtractedQuote{}, &AnalysisError{
			Code:      ErrorCodeLLMSchemaMismatch,
			Reason:    "could not parse AI response",
			Snippet:   llm.Snippet(raw),
			Retryable: true,
			Err:       err,
		}
	}

	enforceNetOfVAT(&q.Totals)
	deriveTotal(&q)
	return q, nil
}

func coerceExtraction(raw string) (ExtractedQuote, error) {
	var doc map[string]any
	if err := llm.DecodeJSON(raw, &doc); err != nil {
		return ExtractedQuote{}, err
	}
	doc = sanitizeDocument(doc)
	if err := validateDocument(doc); err != nil {
		return ExtractedQuote{}, err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return ExtractedQuote{}, err
	}
	var q ExtractedQuote
	if err := json.Unmarshal(b, &q); err != nil {
		return ExtractedQuote{}, err
	}
	return q, nil
}
