package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/modaro-pos/modaro/internal/shared"
)

// RepositoryPort abstracts repository usage for the ledger service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetRecord(ctx context.Context, variantID, storeID int64) (Record, error)
	SumQuantity(ctx context.Context, variantID int64) (int64, error)
	ListMovements(ctx context.Context, variantID, storeID int64, limit int) ([]Movement, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// StockCache caches the cross-store quantity fold.
type StockCache interface {
	GetTotal(ctx context.Context, variantID int64) (int64, bool)
	SetTotal(ctx context.Context, variantID, total int64)
	Invalidate(ctx context.Context, variantID int64)
}

// Service is the inventory ledger: every quantity change flows through
// Apply, which materializes the new quantity and appends the movement that
// justifies it. Direct quantity writes bypassing the ledger are a
// correctness violation.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	cache       StockCache
	allowNeg    bool
	flight      singleflight.Group
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// AllowNegativeStock disables the non-negative quantity guard.
	AllowNegativeStock bool
}

// NewService builds Service. audit, idem and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, cache StockCache, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, cache: cache, allowNeg: cfg.AllowNegativeStock}
}

// Apply posts one movement: reads the current quantity under lock, writes
// quantity + delta and appends the movement record. A reference makes the
// posting idempotent per (type, reference, variant, store).
func (s *Service) Apply(ctx context.Context, input MovementInput) (Movement, error) {
	if input.VariantID <= 0 || input.StoreID <= 0 {
		return Movement{}, errors.New("inventory: variant and store required")
	}
	if input.Delta == 0 {
		return Movement{}, ErrInvalidDelta
	}
	if !input.Type.Valid() {
		return Movement{}, ErrInvalidType
	}
	if input.Actor == "" {
		return Movement{}, errors.New("inventory: actor required")
	}

	insertedKey := false
	key := ""
	if s.idempotency != nil && input.Reference != "" {
		key = fmt.Sprintf("%s:%s:%d:%d", input.Type, input.Reference, input.VariantID, input.StoreID)
		if err := s.idempotency.CheckAndInsert(ctx, key, "inventory"); err != nil {
			return Movement{}, err
		}
		insertedKey = true
	}

	now := time.Now().UTC()
	var movement Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		record, err := tx.GetRecordForUpdate(ctx, input.VariantID, input.StoreID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		before := record.Quantity
		after := before + input.Delta
		if after < 0 && !s.allowNeg {
			return ErrNegativeStock
		}
		record.Quantity = after
		if err := tx.UpsertRecord(ctx, record); err != nil {
			return err
		}
		movement = Movement{
			ID:         uuid.NewString(),
			VariantID:  input.VariantID,
			StoreID:    input.StoreID,
			Type:       input.Type,
			Delta:      input.Delta,
			Before:     before,
			After:      after,
			Reference:  input.Reference,
			Actor:      input.Actor,
			OccurredAt: now,
		}
		return tx.InsertMovement(ctx, movement)
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Movement{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, input.VariantID)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    input.Actor,
			Action:   fmt.Sprintf("inventory:%s", input.Type),
			Entity:   "inventory_movement",
			EntityID: movement.ID,
			Meta: map[string]any{
				"variant_id": input.VariantID,
				"store_id":   input.StoreID,
				"delta":      input.Delta,
				"reference":  input.Reference,
			},
		})
	}
	return movement, nil
}

// Quantity returns the current quantity for one (variant, store) pair,
// zero when no record exists yet.
func (s *Service) Quantity(ctx context.Context, variantID, storeID int64) (int64, error) {
	record, err := s.repo.GetRecord(ctx, variantID, storeID)
	if errors.Is(err, ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Quantity, nil
}

// TotalStock folds the quantity across all stores holding the variant. The
// fold is a read-time aggregation, never a stored value; concurrent callers
// share one query and the result is cached briefly.
func (s *Service) TotalStock(ctx context.Context, variantID int64) (int64, error) {
	if variantID <= 0 {
		return 0, errors.New("inventory: variant required")
	}
	if s.cache != nil {
		if total, ok := s.cache.GetTotal(ctx, variantID); ok {
			return total, nil
		}
	}
	value, err, _ := s.flight.Do(fmt.Sprintf("total:%d", variantID), func() (any, error) {
		total, err := s.repo.SumQuantity(ctx, variantID)
		if err != nil {
			return int64(0), err
		}
		if s.cache != nil {
			s.cache.SetTotal(ctx, variantID, total)
		}
		return total, nil
	})
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// Movements lists recent ledger entries for one pair.
func (s *Service) Movements(ctx context.Context, variantID, storeID int64, limit int) ([]Movement, error) {
	if variantID <= 0 || storeID <= 0 {
		return nil, errors.New("inventory: variant and store required")
	}
	return s.repo.ListMovements(ctx, variantID, storeID, limit)
}
