package suppliers

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName reduces a supplier name to its matching key: trimmed, single
// spaced and Unicode case folded.
func FoldName(name string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
