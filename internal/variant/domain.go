// Package variant implements variant identity: building the size/color
// matrix for a product, diffing it against the persisted variant set and
// applying the resulting plan.
package variant

import (
	"fmt"
	"time"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// Variant is one size/color combination of a product. Within a product the
// (SizeID, ColorID) pair is unique.
type Variant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	SizeID    int64     `json:"size_id"`
	ColorID   int64     `json:"color_id"`
	SKU       string    `json:"sku"`
	Barcode   string    `json:"barcode"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PairKey identifies a cell of the variant matrix. Matching between desired
// and persisted variants is keyed by this pair only; SKU and barcode are
// derived values and may have been manually overridden.
type PairKey struct {
	SizeID  int64 `json:"size_id"`
	ColorID int64 `json:"color_id"`
}

// Plan is one desired cell of the matrix. Stock and barcode carry
// explicit-presence flags so that an absent field never overwrites
// persisted data.
type Plan struct {
	SizeID    int64   `json:"size_id"`
	ColorID   int64   `json:"color_id"`
	SizeName  string  `json:"size_name"`
	ColorName string  `json:"color_name"`
	SKU       string  `json:"sku"`
	Barcode   string  `json:"barcode"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`

	// Stock is the operator-entered quantity for the pair, valid only when
	// StockSet is true. BarcodeOverridden marks an operator-supplied barcode.
	Stock             int64 `json:"stock"`
	StockSet          bool  `json:"stock_set"`
	BarcodeOverridden bool  `json:"barcode_overridden"`
}

// Key returns the matrix cell key of the plan.
func (p Plan) Key() PairKey {
	return PairKey{SizeID: p.SizeID, ColorID: p.ColorID}
}

// Update pairs an existing variant with the plan cell that matched it.
type Update struct {
	VariantID int64 `json:"variant_id"`
	Plan      Plan  `json:"plan"`
}

// ReconciliationPlan is the three-way diff between the desired matrix and
// the persisted variant set. The three sets are disjoint.
type ReconciliationPlan struct {
	Create []Plan    `json:"create"`
	Update []Update  `json:"update"`
	Retire []Variant `json:"retire"`
}

// Empty reports whether the plan contains no work.
func (p ReconciliationPlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Retire) == 0
}

// ApplyResult summarises an applied reconciliation.
type ApplyResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Retired int `json:"retired"`
}

// ErrDuplicatePair indicates two desired cells share a (size, color) key.
var ErrDuplicatePair = fmt.Errorf("%w: duplicate size/color pair", httpx.ErrValidation)

// ErrNoStore indicates that no store was selected for inventory scoping.
var ErrNoStore = fmt.Errorf("%w: store required for inventory changes", httpx.ErrValidation)
