package comparisons

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"offertanalys/internal/llm"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/telemetry"
)

const DefaultMaxTokens = 32000

//go:embed prompts/compare_sv.txt
var comparePrompt string

// Engine compares normalized quotes with the model and then enforces the
// figures that can be computed: scope, ranking and compliance bounds.
type Engine struct {
	LLM       llm.Completer
	MaxTokens int
}

// Compare needs at least two quotes.
func (e *Engine) Compare(ctx context.Context, projectName, categoryName string, qs []ComparisonQuote, specText string) (ComparisonResult, error) {
	if len(qs) < 2 {
		return ComparisonResult{}, fmt.Errorf("%w: at least two quotes are required", ErrComparisonFailed)
	}
	if e.LLM == nil {
		return ComparisonResult{}, fmt.Errorf("%w: %w", ErrComparisonFailed, llm.ErrNotImplemented)
	}
	prompt, err := buildComparePrompt(projectName, categoryName, qs, specText)
	if err != nil {
		return ComparisonResult{}, err
	}
	maxTokens := e.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	model := llm.WithRetry(e.LLM, map[string]any{"operation": "compare", "category": categoryName})
	start := time.Now()
	raw, err := model.Complete(ctx, prompt, maxTokens)
	metrics.ObserveLLM("compare", time.Since(start))
	if err != nil {
		return ComparisonResult{}, fmt.Errorf("%w: %w", ErrComparisonFailed, err)
	}

	var doc map[string]any
	err = llm.DecodeJSON(raw, &doc)
	var res ComparisonResult
	if err == nil {
		res, err = decodeResult(doc)
	}
	if err != nil {
		telemetry.Warn("compare.parse_failed", map[string]any{
			"category": categoryName,
			"snippet":  llm.Snippet(raw),
			"error":    err,
		})
		return ComparisonResult{}, fmt.Errorf("%w: %w", ErrComparisonFailed, err)
	}

	if fullyCategorized(qs) {
		reconcileScope(&res, qs)
	}
	clampCompliance(&res)
	Rank(&res)
	return res, nil
}

func buildComparePrompt(projectName, categoryName string, qs []ComparisonQuote, specText string) (string, error) {
	payload, err := json.MarshalIndent(qs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode quotes: %w", err)
	}
	spec := ""
	if s := strings.TrimSpace(specText); s != "" {
		spec = "TEKNISK BESKRIVNING:\n" + s + "\n"
	}
	return strings.NewReplacer(
		"{{PROJECT}}", projectName,
		"{{CATEGORY}}", categoryName,
		"{{COUNT}}", strconv.Itoa(len(qs)),
		"{{SPECIFICATION}}", spec,
		"{{QUOTES}}", string(payload),
	).Replace(comparePrompt), nil
}
