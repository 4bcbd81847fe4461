// Package barcode derives checksummed numeric identifiers for product
// variants. Encoding is a pure function of the product code and the size and
// color labels, so the same variant always yields the same barcode.
package barcode

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// DefaultEAN13Prefix marks internally assigned codes per GS1 convention.
const DefaultEAN13Prefix = "200"

const (
	productSegmentLen = 5
	sizeSegmentLen    = 2
	colorSegmentLen   = 2
	bodyLen           = productSegmentLen + sizeSegmentLen + colorSegmentLen

	// CompactLength is the body plus one Luhn check digit.
	CompactLength = bodyLen + 1
	// EAN13Length is a 3-digit prefix, the body and one EAN check digit.
	EAN13Length = 13
)

// Components is the result of splitting a barcode back into its segments.
type Components struct {
	Prefix  string
	Product string
	Size    string
	Color   string
	Check   string
	Valid   bool
}

// NormalizeProductSegment reduces a product code to five digits. Digits are
// taken right to left from the code; codes without any digit fall back to a
// deterministic hash so encoding never fails.
func NormalizeProductSegment(code string) string {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return fmt.Sprintf("%05d", stableHash(code)%100000)
	}
	s := digits.String()
	if len(s) > productSegmentLen {
		s = s[len(s)-productSegmentLen:]
	}
	return strings.Repeat("0", productSegmentLen-len(s)) + s
}

// NormalizeSizeSegment extracts the first numeric token of a size label.
// Values outside [9, 99] and non-numeric labels normalize to "00"; a size
// that cannot be parsed must not block variant creation.
func NormalizeSizeSegment(label string) string {
	token := firstNumericToken(label)
	if token == "" {
		return "00"
	}
	value, err := strconv.Atoi(token)
	if err != nil || value < 9 || value > 99 {
		return "00"
	}
	return fmt.Sprintf("%02d", value)
}

// NormalizeColorSegment maps a color label to two digits via a stable hash.
// Distinct colors may collide; callers accepting the compact scheme accept
// that.
func NormalizeColorSegment(label string) string {
	return fmt.Sprintf("%02d", stableHash(label)%100)
}

// ChecksumDigit computes a Luhn check digit over a digit string. Scanning
// right to left, digits at even offsets from the rightmost position are
// doubled, with 9 subtracted when the doubling carries.
func ChecksumDigit(digits string) int {
	sum := 0
	offset := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if offset%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		offset++
	}
	return (10 - sum%10) % 10
}

// ean13CheckDigit weights digits by their distance from the right end,
// alternating x3 and x1, and closes with the usual modulo-10 complement.
func ean13CheckDigit(digits string) int {
	sum := 0
	distance := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if distance%2 == 0 {
			d *= 3
		}
		sum += d
		distance++
	}
	return (10 - sum%10) % 10
}

// Encode builds the compact 10-digit barcode for a variant.
func Encode(productCode, sizeLabel, colorLabel string) string {
	body := NormalizeProductSegment(productCode) +
		NormalizeSizeSegment(sizeLabel) +
		NormalizeColorSegment(colorLabel)
	return body + strconv.Itoa(ChecksumDigit(body))
}

// EncodeEAN13 builds a 13-digit EAN barcode with the given 3-digit prefix.
// An invalid prefix falls back to DefaultEAN13Prefix.
func EncodeEAN13(productCode, sizeLabel, colorLabel, prefix string) string {
	if len(prefix) != 3 || !allDigits(prefix) {
		prefix = DefaultEAN13Prefix
	}
	body := prefix +
		NormalizeProductSegment(productCode) +
		NormalizeSizeSegment(sizeLabel) +
		NormalizeColorSegment(colorLabel)
	return body + strconv.Itoa(ean13CheckDigit(body))
}

// Validate recomputes the check digit and compares it against the last
// character. Only 10- and 13-digit all-numeric strings can validate.
func Validate(code string) bool {
	if !allDigits(code) {
		return false
	}
	body := code[:len(code)-1]
	switch len(code) {
	case CompactLength:
		return strconv.Itoa(ChecksumDigit(body)) == code[len(code)-1:]
	case EAN13Length:
		return strconv.Itoa(ean13CheckDigit(body)) == code[len(code)-1:]
	default:
		return false
	}
}

// Decode splits a barcode into labeled segments. The second return value is
// false for strings that are not 10 or 13 digits long.
func Decode(code string) (Components, bool) {
	if !allDigits(code) {
		return Components{}, false
	}
	switch len(code) {
	case CompactLength:
		return Components{
			Product: code[0:5],
			Size:    code[5:7],
			Color:   code[7:9],
			Check:   code[9:],
			Valid:   Validate(code),
		}, true
	case EAN13Length:
		return Components{
			Prefix:  code[0:3],
			Product: code[3:8],
			Size:    code[8:10],
			Color:   code[10:12],
			Check:   code[12:],
			Valid:   Validate(code),
		}, true
	default:
		return Components{}, false
	}
}

func firstNumericToken(label string) string {
	start := -1
	for i, r := range label {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return label[start:i]
		}
	}
	if start >= 0 {
		return label[start:]
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stableHash(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32())
}
