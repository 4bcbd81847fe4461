package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	records   map[int64]Record
	movements []Movement
	nextID    int64
	sumCalls  int
	batchSize int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]Record), batchSize: 400}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) find(variantID, storeID int64) (Record, bool) {
	// Oldest row wins, matching the ORDER BY id ASC read.
	var best Record
	found := false
	for id := int64(1); id <= r.nextID; id++ {
		rec, ok := r.records[id]
		if ok && rec.VariantID == variantID && rec.StoreID == storeID {
			if !found || rec.ID < best.ID {
				best = rec
				found = true
			}
		}
	}
	return best, found
}

func (r *memoryRepo) GetRecord(ctx context.Context, variantID, storeID int64) (Record, error) {
	if rec, ok := r.find(variantID, storeID); ok {
		return rec, nil
	}
	return Record{VariantID: variantID, StoreID: storeID}, ErrRecordNotFound
}

func (r *memoryRepo) SumQuantity(ctx context.Context, variantID int64) (int64, error) {
	r.sumCalls++
	var total int64
	for _, rec := range r.records {
		if rec.VariantID == variantID {
			total += rec.Quantity
		}
	}
	return total, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, variantID, storeID int64, limit int) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.VariantID == variantID && m.StoreID == storeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (tx *memoryTx) GetRecordForUpdate(ctx context.Context, variantID, storeID int64) (Record, error) {
	return tx.repo.GetRecord(ctx, variantID, storeID)
}

func (tx *memoryTx) UpsertRecord(ctx context.Context, record Record) error {
	if record.ID == 0 {
		tx.repo.nextID++
		record.ID = tx.repo.nextID
	}
	tx.repo.records[record.ID] = record
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, movement Movement) error {
	tx.repo.movements = append(tx.repo.movements, movement)
	return nil
}

type memoryCache struct {
	totals map[int64]int64
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{totals: make(map[int64]int64)}
}

func (c *memoryCache) GetTotal(ctx context.Context, variantID int64) (int64, bool) {
	total, ok := c.totals[variantID]
	return total, ok
}

func (c *memoryCache) SetTotal(ctx context.Context, variantID, total int64) {
	c.totals[variantID] = total
	c.sets++
}

func (c *memoryCache) Invalidate(ctx context.Context, variantID int64) {
	delete(c.totals, variantID)
}

func TestApplyRecordsBeforeAfter(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	m, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: 10, Type: MovementPurchase, Actor: "admin"})
	require.NoError(t, err)
	require.Equal(t, int64(0), m.Before)
	require.Equal(t, int64(10), m.After)
	require.NotEmpty(t, m.ID)

	m, err = svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: -3, Type: MovementSale, Actor: "admin"})
	require.NoError(t, err)
	require.Equal(t, int64(10), m.Before)
	require.Equal(t, int64(7), m.After)

	qty, err := svc.Quantity(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), qty)

	movements, err := svc.Movements(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
}

func TestApplyNegativeStockGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: -1, Type: MovementSale, Actor: "admin"})
	require.ErrorIs(t, err, ErrNegativeStock)
	require.Empty(t, repo.movements)
}

func TestApplyNegativeStockAllowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, ServiceConfig{AllowNegativeStock: true})
	ctx := context.Background()

	m, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: -4, Type: MovementAdjustment, Actor: "admin"})
	require.NoError(t, err)
	require.Equal(t, int64(-4), m.After)
}

func TestApplyValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: 0, Type: MovementSale, Actor: "admin"})
	require.ErrorIs(t, err, ErrInvalidDelta)

	_, err = svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: 1, Type: MovementType("theft"), Actor: "admin"})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Apply(ctx, MovementInput{VariantID: 0, StoreID: 1, Delta: 1, Type: MovementSale, Actor: "admin"})
	require.Error(t, err)
}

func TestQuantityMissingRecordIsZero(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil, ServiceConfig{})

	qty, err := svc.Quantity(context.Background(), 42, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), qty)
}

func TestTotalStockFoldsAcrossStores(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, ServiceConfig{})
	ctx := context.Background()

	for store := int64(1); store <= 3; store++ {
		_, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: store, Delta: store * 10, Type: MovementPurchase, Actor: "admin"})
		require.NoError(t, err)
	}

	total, err := svc.TotalStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(60), total)
}

func TestTotalStockCache(t *testing.T) {
	repo := newMemoryRepo()
	cache := newMemoryCache()
	svc := NewService(repo, nil, nil, cache, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: 5, Type: MovementPurchase, Actor: "admin"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		total, err := svc.TotalStock(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, int64(5), total)
	}
	require.Equal(t, 1, repo.sumCalls)

	// A posting invalidates the cached fold.
	_, err = svc.Apply(ctx, MovementInput{VariantID: 1, StoreID: 1, Delta: 2, Type: MovementPurchase, Actor: "admin"})
	require.NoError(t, err)

	total, err := svc.TotalStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), total)
	require.Equal(t, 2, repo.sumCalls)
}

func TestMovementTypeValid(t *testing.T) {
	for _, mt := range []MovementType{MovementPurchase, MovementSale, MovementAdjustment, MovementReturn, MovementConsolidation} {
		require.True(t, mt.Valid(), fmt.Sprintf("%s should be valid", mt))
	}
	require.False(t, MovementType("").Valid())
	require.False(t, MovementType("theft").Valid())
}
