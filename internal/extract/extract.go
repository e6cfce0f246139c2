package extract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"offertanalys/internal/llm"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/storage/object"
	"offertanalys/internal/shared/telemetry"
	"offertanalys/internal/shared/util"
)

var (
	// ErrUnsupportedFormat means the file extension is not a PDF or spreadsheet.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed means no text could be recovered from the document.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrSourceUnavailable means the stored document could not be downloaded.
	ErrSourceUnavailable = errors.New("source unavailable")
)

const (
	StrategyNative      = "native"
	StrategyPdftotext   = "pdftotext"
	StrategyVision      = "vision"
	StrategySpreadsheet = "spreadsheet"
)

// minUsableChars is the trimmed length at which a PDF strategy's output is accepted.
const minUsableChars = 50

const defaultVisionMaxTokens = 16000

//go:embed prompts/ocr_sv.txt
var ocrPrompt string

// Result is the recovered text and the strategy that produced it.
type Result struct {
	Text     string
	Strategy string
}

// Extractor turns PDF and spreadsheet bytes into plain text. Runner and
// Vision are optional; a nil value skips that PDF strategy.
type Extractor struct {
	Runner          Runner
	PdftotextPath   string
	Vision          llm.DocumentReader
	VisionMaxTokens int
}

// New returns an Extractor that shells out to pdftotextPath and falls back to vision OCR.
func New(pdftotextPath string, vision llm.DocumentReader) *Extractor {
	e := &Extractor{Vision: vision, VisionMaxTokens: defaultVisionMaxTokens}
	if strings.TrimSpace(pdftotextPath) != "" {
		e.Runner = ExecRunner{}
		e.PdftotextPath = pdftotextPath
	}
	return e
}

// Supported reports whether fileName has an extension Extract can handle.
func Supported(fileName string) bool {
	switch util.FileExt(fileName) {
	case "pdf", "xlsx", "xlsm", "xls":
		return true
	}
	return false
}

// Extract dispatches on the file extension.
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch ext := util.FileExt(fileName); ext {
	case "pdf":
		return e.extractPDF(ctx, data, fileName)
	case "xlsx", "xlsm", "xls":
		text, err := extractSpreadsheet(data)
		if err != nil {
			metrics.IncExtraction(StrategySpreadsheet, "error")
			return Result{}, fmt.Errorf("%w: parsing error: %v", ErrExtractionFailed, err)
		}
		if text == "" {
			metrics.IncExtraction(StrategySpreadsheet, "empty")
			return Result{}, fmt.Errorf("%w: spreadsheet has no cell values", ErrExtractionFailed)
		}
		metrics.IncExtraction(StrategySpreadsheet, "ok")
		return Result{Text: text, Strategy: StrategySpreadsheet}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
}

// ExtractFromStore downloads the document at path and extracts it.
func (e *Extractor) ExtractFromStore(ctx context.Context, store object.BlobStore, path, fileName string) (Result, error) {
	if strings.TrimSpace(fileName) == "" {
		fileName = path
	}
	data, err := store.Download(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: download %s: %w", ErrSourceUnavailable, path, err)
	}
	return e.Extract(ctx, data, fileName)
}

type pdfStrategy struct {
	name string
	run  func(ctx context.Context, data []byte, fileName string) (string, error)
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, fileName string) (Result, error) {
	strategies := []pdfStrategy{{name: StrategyNative, run: func(_ context.Context, data []byte, _ string) (string, error) {
		return nativePDFText(data)
	}}}
	if e.Runner != nil && e.PdftotextPath != "" {
		strategies = append(strategies, pdfStrategy{name: StrategyPdftotext, run: e.pdftotext})
	}
	if e.Vision != nil {
		strategies = append(strategies, pdfStrategy{name: StrategyVision, run: e.visionOCR})
	}

	var best Result
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		text, err := s.run(ctx, data, fileName)
		text = strings.TrimSpace(text)
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
			telemetry.Warn("extract.strategy.failed", map[string]any{
				"strategy": s.name,
				"file":     fileName,
				"error":    err,
			})
			text = ""
		case len([]rune(text)) < minUsableChars:
			outcome = "short"
		}
		metrics.IncExtraction(s.name, outcome)
		telemetry.Info("extract.strategy", map[string]any{
			"strategy": s.name,
			"file":     fileName,
			"chars":    len([]rune(text)),
			"outcome":  outcome,
		})

		if outcome == "ok" {
			return Result{Text: text, Strategy: s.name}, nil
		}
		if len(text) > len(best.Text) {
			best = Result{Text: text, Strategy: s.name}
		}
	}

	if best.Text == "" {
		return Result{}, fmt.Errorf("%w: scanned document with no recoverable text", ErrExtractionFailed)
	}
	return best, nil
}

func (e *Extractor) visionOCR(ctx context.Context, data []byte, fileName string) (string, error) {
	maxTokens := e.VisionMaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultVisionMaxTokens
	}
	return e.Vision.ReadDocument(ctx, data, fileName, ocrPrompt, maxTokens)
}
