package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const snippetLimit = 500

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ParseError reports model output that could not be decoded as JSON.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
	}
	return "model output is not valid JSON"
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeJSON decodes model output into v. It tries the raw text, then the
// first fenced code block, then the outermost {...} span of what remains.
func DecodeJSON(raw string, v any) error {
	candidate := strings.TrimSpace(raw)
	err := json.Unmarshal([]byte(candidate), v)
	if err == nil {
		return nil
	}

	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
		if err = json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		if err = json.Unmarshal([]byte(candidate[start:end+1]), v); err == nil {
			return nil
		}
	}

	return &ParseError{Snippet: Snippet(raw), Err: err}
}

// Snippet returns at most the first 500 runes of s.
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLimit {
		return s
	}
	return string(r[:snippetLimit])
}
