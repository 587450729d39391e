package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes, drops combining marks and anything left outside
// ASCII, so "Peñalver" becomes "Penalver".
func asciiFold() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// Normalize strips diacritics and surrounding whitespace. It is idempotent.
func Normalize(s string) string {
	out, _, err := transform.String(asciiFold(), s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(out)
}

// foldKey is the comparison form of s: normalized, lower case, single spaced.
func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(Normalize(s)), " "))
}
