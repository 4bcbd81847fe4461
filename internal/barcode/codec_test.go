package barcode

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProductSegment(t *testing.T) {
	require.Equal(t, "00001", NormalizeProductSegment("SKU001"))
	require.Equal(t, "34567", NormalizeProductSegment("1234567"))
	require.Equal(t, "00042", NormalizeProductSegment("ART-42"))

	hashed := NormalizeProductSegment("CAMISA")
	require.Len(t, hashed, 5)
	require.Equal(t, hashed, NormalizeProductSegment("CAMISA"))

	_, err := strconv.Atoi(hashed)
	require.NoError(t, err)
}

func TestNormalizeSizeSegment(t *testing.T) {
	require.Equal(t, "42", NormalizeSizeSegment("42"))
	require.Equal(t, "09", NormalizeSizeSegment("9"))
	require.Equal(t, "40", NormalizeSizeSegment("Talla 40 EU"))
	require.Equal(t, "00", NormalizeSizeSegment("XL"))
	require.Equal(t, "00", NormalizeSizeSegment("8"))
	require.Equal(t, "00", NormalizeSizeSegment("120"))
	require.Equal(t, "00", NormalizeSizeSegment(""))
}

func TestNormalizeColorSegment(t *testing.T) {
	black := NormalizeColorSegment("Negro")
	require.Len(t, black, 2)
	require.Equal(t, black, NormalizeColorSegment("Negro"))
	require.NotEqual(t, black, NormalizeColorSegment("Blanco"))
}

func TestEncodeValidateRoundTrip(t *testing.T) {
	inputs := []struct {
		product, size, color string
	}{
		{"SKU001", "42", "Negro"},
		{"1234567", "9", "Blanco"},
		{"CAMISA", "XL", "Azul Marino"},
		{"", "", ""},
	}
	for _, in := range inputs {
		code := Encode(in.product, in.size, in.color)
		require.Len(t, code, CompactLength)
		require.True(t, Validate(code), "compact %q", code)
		require.Equal(t, code, Encode(in.product, in.size, in.color))

		ean := EncodeEAN13(in.product, in.size, in.color, "")
		require.Len(t, ean, EAN13Length)
		require.True(t, Validate(ean), "ean %q", ean)
		require.Equal(t, "200", ean[:3])
	}
}

func TestValidateRejectsCorruption(t *testing.T) {
	code := Encode("SKU001", "42", "Negro")
	for i := 0; i < len(code); i++ {
		mutated := []byte(code)
		mutated[i] = '0' + byte((int(mutated[i]-'0')+1)%10)
		require.False(t, Validate(string(mutated)), "digit %d", i)
	}

	require.False(t, Validate(""))
	require.False(t, Validate("12345"))
	require.False(t, Validate("abcdefghij"))
	require.False(t, Validate("123456789012"))
}

func TestDecode(t *testing.T) {
	code := Encode("SKU001", "42", "Negro")
	parts, ok := Decode(code)
	require.True(t, ok)
	require.True(t, parts.Valid)
	require.Equal(t, "00001", parts.Product)
	require.Equal(t, "42", parts.Size)
	require.Equal(t, NormalizeColorSegment("Negro"), parts.Color)
	require.Empty(t, parts.Prefix)

	ean := EncodeEAN13("SKU001", "42", "Negro", "201")
	parts, ok = Decode(ean)
	require.True(t, ok)
	require.True(t, parts.Valid)
	require.Equal(t, "201", parts.Prefix)
	require.Equal(t, "00001", parts.Product)

	_, ok = Decode("12345678")
	require.False(t, ok)

	corrupted := code[:CompactLength-1] + flipDigit(code[CompactLength-1])
	parts, ok = Decode(corrupted)
	require.True(t, ok)
	require.False(t, parts.Valid)
}

func flipDigit(b byte) string {
	return string('0' + byte((int(b-'0')+1)%10))
}
