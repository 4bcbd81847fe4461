package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSKU(t *testing.T) {
	require.Equal(t, "SKU001-38-BLACK", BuildSKU("SKU001", "38", "Black"))
	require.Equal(t, "TEE-XL-NAVY-BLUE", BuildSKU("tee", "XL", "navy blue"))
}

func TestBuildSKUStripsDiacritics(t *testing.T) {
	require.Equal(t, "CAFE-38-ROJO", BuildSKU("Café", "38", "Rojo"))
	require.Equal(t, "P1-40-BLEU-FONCE", BuildSKU("p1", "40", "bleu  foncé"))
}

func TestBuildSKUSkipsEmptyParts(t *testing.T) {
	require.Equal(t, "SKU001-BLACK", BuildSKU("SKU001", "  ", "Black"))
}
