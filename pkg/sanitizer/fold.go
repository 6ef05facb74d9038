package sanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case- and accent-insensitive form of s.
// Dotted capital İ lowercases to i plus a combining dot, which the mark
// removal drops; the dotless ı has no decomposition and is mapped explicitly.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	// Casers and chained transformers keep state, so each call builds its own.
	t := transform.Chain(
		cases.Lower(language.Und),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.ReplaceAll(folded, "ı", "i")
}

// ContainsFold reports whether needle occurs in haystack after folding both.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
