package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode trims and upper-cases codes such as coupons so comparisons ignore case and padding.
func NormalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// HasPrefixFold reports whether value starts with prefix under Unicode case folding.
// Surrounding whitespace in prefix is ignored; an empty prefix matches everything.
func HasPrefixFold(value, prefix string) bool {
	folder := cases.Fold()
	return strings.HasPrefix(folder.String(value), folder.String(strings.TrimSpace(prefix)))
}

// Slug lower-cases value, strips diacritics, and joins alphanumeric runs with hyphens.
func Slug(value string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		stripped = value
	}
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
