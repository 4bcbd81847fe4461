package variant

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var skuStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// BuildSKU derives the human-readable stock unit string: product code, size
// name and color name uppercased, diacritics stripped and whitespace runs
// collapsed to single hyphens.
func BuildSKU(productCode, sizeName, colorName string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{productCode, sizeName, colorName} {
		cleaned := skuToken(part)
		if cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, "-")
}

func skuToken(s string) string {
	if stripped, _, err := transform.String(skuStripper, s); err == nil {
		s = stripped
	}
	fields := strings.Fields(strings.ToUpper(s))
	return strings.Join(fields, "-")
}
