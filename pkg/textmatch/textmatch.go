package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition, so that
// "Théâtre" and "theatre" fold to the same string.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritics. Input that fails to transform is
// returned lowercased only, so matching degrades rather than erroring.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// Contains reports whether name contains query as a case and diacritic
// insensitive substring. An empty query matches everything.
func Contains(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Fold(name), Fold(query))
}
