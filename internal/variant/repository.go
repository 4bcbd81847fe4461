package variant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modaro-pos/modaro/internal/platform/db"
	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// DefaultBatchSize bounds the number of writes per commit. Large plans are
// split into multiple commits, so a multi-batch apply is not atomic end to
// end; callers tolerate partial progress and rely on the consolidator as
// repair tooling.
const DefaultBatchSize = 400

// ErrVariantNotFound indicates a missing variant row.
var ErrVariantNotFound = fmt.Errorf("variant %w", httpx.ErrNotFound)

// BarcodeUpdate carries an operator-supplied barcode for one variant.
type BarcodeUpdate struct {
	VariantID int64
	Barcode   string
}

// Repository persists variants and their inventory rows in PostgreSQL.
type Repository struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewRepository constructs Repository. batchSize <= 0 selects the default.
func NewRepository(pool *pgxpool.Pool, batchSize int) *Repository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Repository{pool: pool, batchSize: batchSize}
}

// ListByProduct returns the active variants of a product.
func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]Variant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, size_id, color_id, sku, barcode, price, cost, is_active, created_at, updated_at
FROM variants WHERE product_id = $1 AND is_active = TRUE ORDER BY id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVariants(rows)
}

// GetByID fetches one variant regardless of active flag.
func (r *Repository) GetByID(ctx context.Context, id int64) (Variant, error) {
	var v Variant
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, size_id, color_id, sku, barcode, price, cost, is_active, created_at, updated_at
FROM variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.SizeID, &v.ColorID, &v.SKU, &v.Barcode, &v.Price, &v.Cost, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Variant{}, ErrVariantNotFound
	}
	return v, err
}

// CreateVariants inserts the desired cells and returns the persisted rows in
// input order. Inserts are grouped into bounded batches, each committed in
// its own transaction.
func (r *Repository) CreateVariants(ctx context.Context, productID int64, plans []Plan) ([]Variant, error) {
	created := make([]Variant, 0, len(plans))
	now := time.Now().UTC()
	for start := 0; start < len(plans); start += r.batchSize {
		end := min(start+r.batchSize, len(plans))
		group := plans[start:end]

		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, plan := range group {
				batch.Queue(`INSERT INTO variants (product_id, size_id, color_id, sku, barcode, price, cost, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,$8,$8) RETURNING id`,
					productID, plan.SizeID, plan.ColorID, plan.SKU, plan.Barcode, plan.Price, plan.Cost, now)
			}
			results := tx.SendBatch(ctx, batch)
			defer results.Close()
			for _, plan := range group {
				var id int64
				if err := results.QueryRow().Scan(&id); err != nil {
					return err
				}
				created = append(created, Variant{
					ID:        id,
					ProductID: productID,
					SizeID:    plan.SizeID,
					ColorID:   plan.ColorID,
					SKU:       plan.SKU,
					Barcode:   plan.Barcode,
					Price:     plan.Price,
					Cost:      plan.Cost,
					IsActive:  true,
					CreatedAt: now,
					UpdatedAt: now,
				})
			}
			return results.Close()
		})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// SetBarcodes applies operator barcode overrides in bounded batches.
func (r *Repository) SetBarcodes(ctx context.Context, updates []BarcodeUpdate) error {
	for start := 0; start < len(updates); start += r.batchSize {
		end := min(start+r.batchSize, len(updates))
		group := updates[start:end]

		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, u := range group {
				batch.Queue(`UPDATE variants SET barcode = $1, updated_at = NOW() WHERE id = $2`, u.Barcode, u.VariantID)
			}
			return tx.SendBatch(ctx, batch).Close()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureInventoryRecords creates the per-store inventory row for each
// variant unless one already exists. The existence check is not guarded by a
// unique constraint; two clients racing here can still produce duplicates,
// which the consolidator repairs.
func (r *Repository) EnsureInventoryRecords(ctx context.Context, variantIDs []int64, storeID int64) error {
	for start := 0; start < len(variantIDs); start += r.batchSize {
		end := min(start+r.batchSize, len(variantIDs))
		group := variantIDs[start:end]

		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, id := range group {
				batch.Queue(`INSERT INTO inventory_records (variant_id, store_id, quantity, min_stock, updated_at)
SELECT $1, $2, 0, 0, NOW()
WHERE NOT EXISTS (SELECT 1 FROM inventory_records WHERE variant_id = $1 AND store_id = $2)`, id, storeID)
			}
			return tx.SendBatch(ctx, batch).Close()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RetireVariants soft-deletes variants and removes their inventory rows for
// every store, in bounded batches.
func (r *Repository) RetireVariants(ctx context.Context, variantIDs []int64) error {
	// Two ops per variant; halve the chunk so a commit stays within bounds.
	step := max(r.batchSize/2, 1)
	for start := 0; start < len(variantIDs); start += step {
		end := min(start+step, len(variantIDs))
		group := variantIDs[start:end]

		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, id := range group {
				batch.Queue(`UPDATE variants SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
				batch.Queue(`DELETE FROM inventory_records WHERE variant_id = $1`, id)
			}
			return tx.SendBatch(ctx, batch).Close()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func scanVariants(rows pgx.Rows) ([]Variant, error) {
	var variants []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SizeID, &v.ColorID, &v.SKU, &v.Barcode, &v.Price, &v.Cost, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}
