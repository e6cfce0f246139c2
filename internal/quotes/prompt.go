package quotes

import (
	_ "embed"
	"strings"
)

//go:embed prompts/extraction_sv.txt
var extractionPrompt string

// BuildExtractionPrompt embeds the quote text in the extraction template.
func BuildExtractionPrompt(text string) string {
	return strings.Replace(extractionPrompt, "{{QUOTE_TEXT}}", strings.TrimSpace(text), 1)
}
