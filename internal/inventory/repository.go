package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modaro-pos/modaro/internal/platform/db"
)

// Repository persists inventory records and movements in PostgreSQL.
type Repository struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewRepository constructs Repository. batchSize bounds the writes queued
// into one repair commit; <= 0 selects 400.
func NewRepository(pool *pgxpool.Pool, batchSize int) *Repository {
	if batchSize <= 0 {
		batchSize = 400
	}
	return &Repository{pool: pool, batchSize: batchSize}
}

// BatchSize exposes the configured per-commit bound.
func (r *Repository) BatchSize() int {
	return r.batchSize
}

// TxRepository exposes the transactional operations used by the ledger.
type TxRepository interface {
	GetRecordForUpdate(ctx context.Context, variantID, storeID int64) (Record, error)
	UpsertRecord(ctx context.Context, record Record) error
	InsertMovement(ctx context.Context, movement Movement) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetRecord reads the inventory row for one (variant, store) pair. When
// duplicates exist the oldest row is returned; the consolidator owns the
// repair.
func (r *Repository) GetRecord(ctx context.Context, variantID, storeID int64) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `SELECT id, variant_id, store_id, quantity, min_stock, updated_at
FROM inventory_records WHERE variant_id = $1 AND store_id = $2 ORDER BY id ASC LIMIT 1`, variantID, storeID).
		Scan(&rec.ID, &rec.VariantID, &rec.StoreID, &rec.Quantity, &rec.MinStock, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{VariantID: variantID, StoreID: storeID}, ErrRecordNotFound
	}
	return rec, err
}

// SumQuantity folds the quantity across every store holding the variant.
func (r *Repository) SumQuantity(ctx context.Context, variantID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE variant_id = $1`, variantID).Scan(&total)
	return total, err
}

// ListMovements returns the most recent ledger entries for a pair.
func (r *Repository) ListMovements(ctx context.Context, variantID, storeID int64, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, variant_id, store_id, movement_type, delta, qty_before, qty_after, reference, actor, occurred_at
FROM inventory_movements WHERE variant_id = $1 AND store_id = $2 ORDER BY occurred_at DESC, id DESC LIMIT $3`, variantID, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.VariantID, &m.StoreID, &m.Type, &m.Delta, &m.Before, &m.After, &m.Reference, &m.Actor, &m.OccurredAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListRecords returns every inventory row, ordered by insertion, for the
// consolidation scan.
func (r *Repository) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, variant_id, store_id, quantity, min_stock, updated_at FROM inventory_records ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.VariantID, &rec.StoreID, &rec.Quantity, &rec.MinStock, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RepairOp is one consolidation group's write set: the canonical record
// update, the duplicate rows to delete and the movement justifying the
// quantity change. Key, when set, is recorded in idempotency_keys inside the
// same transaction so an interrupted run never re-applies the merge.
type RepairOp struct {
	Key      string
	Update   Record
	Deletes  []int64
	Movement *Movement
}

// Weight is the number of writes the op queues into a commit.
func (op RepairOp) Weight() int {
	w := 1 + len(op.Deletes)
	if op.Key != "" {
		w++
	}
	if op.Movement != nil {
		w++
	}
	return w
}

// ApplyRepairs commits one bounded group of repair ops atomically.
func (r *Repository) ApplyRepairs(ctx context.Context, ops []RepairOp) error {
	if len(ops) == 0 {
		return nil
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, op := range ops {
			if op.Key != "" {
				batch.Queue(`INSERT INTO idempotency_keys (key, module, created_at) VALUES ($1, 'consolidation', NOW())`, op.Key)
			}
			batch.Queue(`UPDATE inventory_records SET store_id = $1, quantity = $2, min_stock = $3, updated_at = NOW() WHERE id = $4`,
				op.Update.StoreID, op.Update.Quantity, op.Update.MinStock, op.Update.ID)
			for _, id := range op.Deletes {
				batch.Queue(`DELETE FROM inventory_records WHERE id = $1`, id)
			}
			if op.Movement != nil {
				m := op.Movement
				batch.Queue(`INSERT INTO inventory_movements (id, variant_id, store_id, movement_type, delta, qty_before, qty_after, reference, actor, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
					m.ID, m.VariantID, m.StoreID, string(m.Type), m.Delta, m.Before, m.After, m.Reference, m.Actor, m.OccurredAt)
			}
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// A concurrent run committed the same group fingerprint first.
		return ErrConsolidationBusy
	}
	return err
}

func (r *txRepository) GetRecordForUpdate(ctx context.Context, variantID, storeID int64) (Record, error) {
	var rec Record
	err := r.tx.QueryRow(ctx, `SELECT id, variant_id, store_id, quantity, min_stock, updated_at
FROM inventory_records WHERE variant_id = $1 AND store_id = $2 ORDER BY id ASC LIMIT 1 FOR UPDATE`, variantID, storeID).
		Scan(&rec.ID, &rec.VariantID, &rec.StoreID, &rec.Quantity, &rec.MinStock, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{VariantID: variantID, StoreID: storeID}, ErrRecordNotFound
	}
	return rec, err
}

func (r *txRepository) UpsertRecord(ctx context.Context, record Record) error {
	if record.ID != 0 {
		_, err := r.tx.Exec(ctx, `UPDATE inventory_records SET quantity = $1, min_stock = $2, updated_at = $3 WHERE id = $4`,
			record.Quantity, record.MinStock, time.Now().UTC(), record.ID)
		return err
	}
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_records (variant_id, store_id, quantity, min_stock, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		record.VariantID, record.StoreID, record.Quantity, record.MinStock, time.Now().UTC())
	return err
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_movements (id, variant_id, store_id, movement_type, delta, qty_before, qty_after, reference, actor, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.VariantID, m.StoreID, string(m.Type), m.Delta, m.Before, m.After, m.Reference, m.Actor, m.OccurredAt)
	return err
}
