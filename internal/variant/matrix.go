package variant

import (
	"github.com/modaro-pos/modaro/internal/barcode"
	"github.com/modaro-pos/modaro/internal/catalog"
)

// Barcode overrides shorter than this are ignored and the derived code used
// instead; anything shorter cannot be a valid scannable symbol.
const minBarcodeOverrideLen = 10

// MatrixInput collects the operator's choices for one product.
type MatrixInput struct {
	Product       catalog.Product
	Sizes         []catalog.SizeLabel
	Colors        []catalog.ColorLabel
	StockByPair   map[PairKey]int64
	BarcodeByPair map[PairKey]string
}

// BuildMatrix computes the full cross-product of the selected sizes and
// colors. It is a pure transformation: the same input always yields the same
// plans, with exactly len(Sizes) * len(Colors) cells and no duplicate pairs.
func BuildMatrix(in MatrixInput) []Plan {
	plans := make([]Plan, 0, len(in.Sizes)*len(in.Colors))
	for _, size := range in.Sizes {
		for _, color := range in.Colors {
			key := PairKey{SizeID: size.ID, ColorID: color.ID}
			plan := Plan{
				SizeID:    size.ID,
				ColorID:   color.ID,
				SizeName:  size.Name,
				ColorName: color.Name,
				SKU:       BuildSKU(in.Product.Code, size.Name, color.Name),
				Price:     in.Product.Price,
				Cost:      in.Product.Cost,
			}
			if override, ok := in.BarcodeByPair[key]; ok && len(override) >= minBarcodeOverrideLen {
				plan.Barcode = override
				plan.BarcodeOverridden = true
			} else {
				plan.Barcode = barcode.Encode(in.Product.Code, size.Name, color.Name)
			}
			if stock, ok := in.StockByPair[key]; ok {
				plan.Stock = stock
				plan.StockSet = true
			}
			plans = append(plans, plan)
		}
	}
	return plans
}
