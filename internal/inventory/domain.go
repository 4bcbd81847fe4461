// Package inventory maintains the per-(variant, store) quantity ledger:
// one materialized record per pair, justified by append-only movements.
package inventory

import (
	"fmt"
	"time"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// MovementType enumerates the causes of a quantity change.
type MovementType string

const (
	// MovementPurchase covers supplier receipts and initial stock.
	MovementPurchase MovementType = "purchase"
	// MovementSale is an outbound sale.
	MovementSale MovementType = "sale"
	// MovementAdjustment is a manual correction.
	MovementAdjustment MovementType = "adjustment"
	// MovementReturn is a customer return.
	MovementReturn MovementType = "return"
	// MovementConsolidation justifies quantity changes made by the
	// duplicate-record repair pass.
	MovementConsolidation MovementType = "consolidation"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementAdjustment, MovementReturn, MovementConsolidation:
		return true
	}
	return false
}

// Record is the materialized current quantity for one variant in one store.
// At most one record may exist per (VariantID, StoreID); the consolidator
// repairs violations introduced by non-atomic multi-step writes.
type Record struct {
	ID        int64     `json:"id"`
	VariantID int64     `json:"variant_id"`
	StoreID   int64     `json:"store_id"`
	Quantity  int64     `json:"quantity"`
	MinStock  int64     `json:"min_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Movement is an immutable ledger entry. After always equals Before plus the
// signed Delta, and the record's quantity equals the sum of all deltas
// applied to its (variant, store) pair.
type Movement struct {
	ID         string       `json:"id"`
	VariantID  int64        `json:"variant_id"`
	StoreID    int64        `json:"store_id"`
	Type       MovementType `json:"type"`
	Delta      int64        `json:"delta"`
	Before     int64        `json:"before"`
	After      int64        `json:"after"`
	Reference  string       `json:"reference"`
	Actor      string       `json:"actor"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// MovementInput describes a requested quantity change.
type MovementInput struct {
	VariantID int64
	StoreID   int64
	Delta     int64
	Type      MovementType
	Reference string
	Actor     string
}

// ConsolidationReport summarises one duplicate-repair run.
type ConsolidationReport struct {
	RunID            string `json:"run_id"`
	DuplicatesFound  int    `json:"duplicates_found"`
	DuplicatesFixed  int    `json:"duplicates_fixed"`
	StoresBackfilled int    `json:"stores_backfilled"`
}

// ErrNegativeStock is returned when a movement would drive a quantity below
// zero.
var ErrNegativeStock = fmt.Errorf("%w: movement would drive stock negative", httpx.ErrValidation)

// ErrInvalidDelta indicates a zero delta.
var ErrInvalidDelta = fmt.Errorf("%w: delta must be non zero", httpx.ErrValidation)

// ErrInvalidType indicates an unknown movement type.
var ErrInvalidType = fmt.Errorf("%w: unknown movement type", httpx.ErrValidation)

// ErrRecordNotFound indicates a missing inventory record.
var ErrRecordNotFound = fmt.Errorf("inventory record %w", httpx.ErrNotFound)
