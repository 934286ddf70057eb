// Package normalize canonicalizes user-authored text for pattern matching.
// The same transform is applied to rule patterns at catalog load time so
// diacritic-insensitive matching stays symmetric.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks and recomposes.
// "não" and "nao" normalize to the same form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text lower-cases and diacritic-strips the input, preserving whitespace.
// It is idempotent and total: every input, including the empty string,
// yields a string.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Invalid UTF-8 sequences pass through untouched rather than
		// dropping user input on the floor.
		out = s
	}
	return strings.ToLower(out)
}
