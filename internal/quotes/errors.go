package quotes

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisFailed is matched by every *AnalysisError.
	ErrAnalysisFailed = errors.New("analysis failed")
)

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeExtraction        = "EXTRACTION_FAILED"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)

// AnalysisError describes why a quote could not be analyzed.
type AnalysisError struct {
	Code      string
	Reason    string
	Snippet   string
	Retryable bool
	Err       error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Reason, e.Err)
	}
	return "analysis failed: " + e.Reason
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// UserMessage is the short reason shown next to the supplier name.
func (e *AnalysisError) UserMessage() string { return e.Reason }
