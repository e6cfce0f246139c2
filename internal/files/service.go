package files

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"offertanalys/internal/extract"
	"offertanalys/internal/shared/storage/object"
	"offertanalys/internal/shared/telemetry"
)

var ErrInvalidInput = errors.New("invalid input")

type Extractor interface {
	ExtractFromStore(ctx context.Context, store object.BlobStore, path, fileName string) (extract.Result, error)
}

// SpecificationWriter records text extracted from a specification document.
type SpecificationWriter interface {
	SetSpecificationText(ctx context.Context, id, text string) error
}

// Service extracts text from documents that are already in the blob store.
type Service struct {
	Extractor Extractor
	Store     object.BlobStore
	Specs     SpecificationWriter
}

type ProcessInput struct {
	FilePath        string
	FileName        string
	SpecificationID string
}

type Processed struct {
	FileName        string `json:"fileName"`
	FilePath        string `json:"filePath"`
	ExtractedText   string `json:"extractedText"`
	Strategy        string `json:"strategy"`
	SpecificationID string `json:"specificationId,omitempty"`
}

// Process downloads and extracts a stored document. When SpecificationID is
// set the text is saved on that specification.
func (s *Service) Process(ctx context.Context, in ProcessInput) (Processed, error) {
	path := strings.TrimSpace(in.FilePath)
	name := strings.TrimSpace(in.FileName)
	if path == "" || name == "" {
		return Processed{}, fmt.Errorf("%w: filePath and fileName are required", ErrInvalidInput)
	}
	if !extract.Supported(name) {
		return Processed{}, fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, name)
	}

	res, err := s.Extractor.ExtractFromStore(ctx, s.Store, path, name)
	if err != nil {
		telemetry.Warn("files.process_failed", map[string]any{"path": path, "error": err})
		return Processed{}, err
	}
	out := Processed{FileName: name, FilePath: path, ExtractedText: res.Text, Strategy: res.Strategy}

	if id := strings.TrimSpace(in.SpecificationID); id != "" && s.Specs != nil {
		if err := s.Specs.SetSpecificationText(ctx, id, res.Text); err != nil {
			return Processed{}, fmt.Errorf("save specification text: %w", err)
		}
		out.SpecificationID = id
	}
	telemetry.Info("files.processed", map[string]any{
		"path":             path,
		"strategy":         res.Strategy,
		"chars":            len(res.Text),
		"specification_id": out.SpecificationID,
	})
	return out, nil
}
