package variant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/modaro-pos/modaro/internal/catalog"
	"github.com/modaro-pos/modaro/internal/inventory"
	"github.com/modaro-pos/modaro/internal/shared"
)

// RepositoryPort abstracts variant persistence for the service.
type RepositoryPort interface {
	ListByProduct(ctx context.Context, productID int64) ([]Variant, error)
	GetByID(ctx context.Context, id int64) (Variant, error)
	CreateVariants(ctx context.Context, productID int64, plans []Plan) ([]Variant, error)
	SetBarcodes(ctx context.Context, updates []BarcodeUpdate) error
	EnsureInventoryRecords(ctx context.Context, variantIDs []int64, storeID int64) error
	RetireVariants(ctx context.Context, variantIDs []int64) error
}

// CatalogPort resolves the master data the matrix is built from.
type CatalogPort interface {
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	GetSizes(ctx context.Context, ids []int64) ([]catalog.SizeLabel, error)
	GetColors(ctx context.Context, ids []int64) ([]catalog.ColorLabel, error)
	GetStore(ctx context.Context, id int64) (catalog.Store, error)
	ListStores(ctx context.Context, activeOnly bool) ([]catalog.Store, error)
}

// LedgerPort routes every stock change through the inventory ledger.
type LedgerPort interface {
	Apply(ctx context.Context, input inventory.MovementInput) (inventory.Movement, error)
	Quantity(ctx context.Context, variantID, storeID int64) (int64, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MatrixRequest is the operator's desired matrix for one product.
type MatrixRequest struct {
	SizeIDs       []int64
	ColorIDs      []int64
	StockByPair   map[PairKey]int64
	BarcodeByPair map[PairKey]string
}

// Service orchestrates matrix building, reconciliation planning and plan
// application.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	ledger  LedgerPort
	audit   AuditPort
}

// NewService builds Service. audit may be nil.
func NewService(repo RepositoryPort, cat CatalogPort, ledger LedgerPort, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: cat, ledger: ledger, audit: audit}
}

// ListByProduct returns the product's active variants.
func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]Variant, error) {
	if productID <= 0 {
		return nil, errors.New("variant: invalid product id")
	}
	return s.repo.ListByProduct(ctx, productID)
}

// Get returns one variant by id.
func (s *Service) Get(ctx context.Context, id int64) (Variant, error) {
	if id <= 0 {
		return Variant{}, errors.New("variant: invalid variant id")
	}
	return s.repo.GetByID(ctx, id)
}

// BuildPlan resolves the catalog entries, builds the desired matrix and
// diffs it against the persisted variant set. It performs no writes, so the
// same request can preview and then apply.
func (s *Service) BuildPlan(ctx context.Context, productID int64, req MatrixRequest) (ReconciliationPlan, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return ReconciliationPlan{}, fmt.Errorf("variant: resolve product: %w", err)
	}

	// An empty axis means an empty desired matrix: the plan retires every
	// persisted variant. Catalog lookups reject empty id lists, so skip
	// resolution entirely in that case.
	var desired []Plan
	if len(req.SizeIDs) > 0 && len(req.ColorIDs) > 0 {
		sizes, err := s.catalog.GetSizes(ctx, req.SizeIDs)
		if err != nil {
			return ReconciliationPlan{}, fmt.Errorf("variant: resolve sizes: %w", err)
		}
		colors, err := s.catalog.GetColors(ctx, req.ColorIDs)
		if err != nil {
			return ReconciliationPlan{}, fmt.Errorf("variant: resolve colors: %w", err)
		}
		desired = BuildMatrix(MatrixInput{
			Product:       product,
			Sizes:         sizes,
			Colors:        colors,
			StockByPair:   req.StockByPair,
			BarcodeByPair: req.BarcodeByPair,
		})
	}
	existing, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return ReconciliationPlan{}, err
	}
	return PlanReconciliation(desired, existing)
}

// Apply executes a reconciliation plan. Writes are grouped into bounded
// batch commits; a plan spanning several commits is not atomic end to end
// and the caller retries the whole operation on failure. All stock flows
// through the ledger: initial stock is a purchase movement from zero,
// stock edits become adjustment movements against the selected store only.
func (s *Service) Apply(ctx context.Context, productID, storeID int64, plan ReconciliationPlan, actor string) (ApplyResult, error) {
	if productID <= 0 {
		return ApplyResult{}, errors.New("variant: invalid product id")
	}
	if actor == "" {
		return ApplyResult{}, errors.New("variant: actor required")
	}
	needsStore := len(plan.Create) > 0
	for _, u := range plan.Update {
		if u.Plan.StockSet {
			needsStore = true
		}
	}
	if needsStore {
		if storeID <= 0 {
			return ApplyResult{}, ErrNoStore
		}
		store, err := s.catalog.GetStore(ctx, storeID)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("variant: resolve store: %w", err)
		}
		if !store.IsActive {
			return ApplyResult{}, shared.ErrNoActiveStore
		}
	}

	// One reference per apply run keeps ledger idempotency keys unique
	// across successive edits while tying the run's movements together.
	opRef := uuid.NewString()

	var result ApplyResult

	created, err := s.repo.CreateVariants(ctx, productID, plan.Create)
	result.Created = len(created)
	if err != nil {
		return result, fmt.Errorf("variant: create: %w", err)
	}
	if len(created) > 0 {
		ids := make([]int64, len(created))
		for i, v := range created {
			ids[i] = v.ID
		}
		if err := s.repo.EnsureInventoryRecords(ctx, ids, storeID); err != nil {
			return result, fmt.Errorf("variant: inventory rows: %w", err)
		}
		for i, v := range created {
			p := plan.Create[i]
			if !p.StockSet || p.Stock == 0 {
				continue
			}
			_, err := s.ledger.Apply(ctx, inventory.MovementInput{
				VariantID: v.ID,
				StoreID:   storeID,
				Delta:     p.Stock,
				Type:      inventory.MovementPurchase,
				Reference: fmt.Sprintf("variant-create:%s:%d", opRef, v.ID),
				Actor:     actor,
			})
			if err != nil {
				return result, fmt.Errorf("variant: initial stock: %w", err)
			}
		}
	}

	var barcodes []BarcodeUpdate
	for _, u := range plan.Update {
		if u.Plan.BarcodeOverridden {
			barcodes = append(barcodes, BarcodeUpdate{VariantID: u.VariantID, Barcode: u.Plan.Barcode})
		}
	}
	if err := s.repo.SetBarcodes(ctx, barcodes); err != nil {
		return result, fmt.Errorf("variant: barcodes: %w", err)
	}
	for _, u := range plan.Update {
		if !u.Plan.StockSet {
			continue
		}
		current, err := s.ledger.Quantity(ctx, u.VariantID, storeID)
		if err != nil {
			return result, err
		}
		delta := u.Plan.Stock - current
		if delta == 0 {
			continue
		}
		_, err = s.ledger.Apply(ctx, inventory.MovementInput{
			VariantID: u.VariantID,
			StoreID:   storeID,
			Delta:     delta,
			Type:      inventory.MovementAdjustment,
			Reference: fmt.Sprintf("variant-edit:%s:%d", opRef, u.VariantID),
			Actor:     actor,
		})
		if err != nil {
			return result, fmt.Errorf("variant: stock edit: %w", err)
		}
	}
	result.Updated = len(plan.Update)

	if len(plan.Retire) > 0 {
		ids := make([]int64, len(plan.Retire))
		for i, v := range plan.Retire {
			ids[i] = v.ID
		}
		if err := s.repo.RetireVariants(ctx, ids); err != nil {
			return result, fmt.Errorf("variant: retire: %w", err)
		}
		result.Retired = len(ids)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "variant:reconcile",
			Entity:   "product",
			EntityID: fmt.Sprintf("%d", productID),
			Meta: map[string]any{
				"store_id": storeID,
				"created":  result.Created,
				"updated":  result.Updated,
				"retired":  result.Retired,
			},
		})
	}
	return result, nil
}

// Reconcile builds the plan for the request and applies it in one call.
func (s *Service) Reconcile(ctx context.Context, productID, storeID int64, req MatrixRequest, actor string) (ReconciliationPlan, ApplyResult, error) {
	plan, err := s.BuildPlan(ctx, productID, req)
	if err != nil {
		return ReconciliationPlan{}, ApplyResult{}, err
	}
	result, err := s.Apply(ctx, productID, storeID, plan, actor)
	return plan, result, err
}
