package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// ErrNotFound indicates a missing catalog row.
var ErrNotFound = fmt.Errorf("catalog entry %w", httpx.ErrNotFound)

// Repository exposes catalog persistence used by the services.
type Repository interface {
	ListProducts(ctx context.Context, filters ListFilters) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, id int64, product Product) error

	ListSizes(ctx context.Context, activeOnly bool) ([]SizeLabel, error)
	GetSizes(ctx context.Context, ids []int64) ([]SizeLabel, error)
	CreateSize(ctx context.Context, size SizeLabel) (SizeLabel, error)

	ListColors(ctx context.Context, activeOnly bool) ([]ColorLabel, error)
	GetColors(ctx context.Context, ids []int64) ([]ColorLabel, error)
	CreateColor(ctx context.Context, color ColorLabel) (ColorLabel, error)

	ListStores(ctx context.Context, activeOnly bool) ([]Store, error)
	GetStore(ctx context.Context, id int64) (Store, error)
	CreateStore(ctx context.Context, store Store) (Store, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed catalog repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	query := `SELECT id, code, name, price, cost, is_active, created_at, updated_at FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}
	query += ` ORDER BY code ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Cost, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT id, code, name, price, cost, is_active, created_at, updated_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Cost, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) CreateProduct(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO products (code, name, price, cost, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		product.Code, product.Name, product.Price, product.Cost, product.IsActive, now).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET code = $1, name = $2, price = $3, cost = $4, is_active = $5, updated_at = $6 WHERE id = $7`,
		product.Code, product.Name, product.Price, product.Cost, product.IsActive, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListSizes(ctx context.Context, activeOnly bool) ([]SizeLabel, error) {
	query := `SELECT id, name, sort_order, is_active FROM size_labels`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []SizeLabel
	for rows.Next() {
		var s SizeLabel
		if err := rows.Scan(&s.ID, &s.Name, &s.SortOrder, &s.IsActive); err != nil {
			return nil, err
		}
		sizes = append(sizes, s)
	}
	return sizes, rows.Err()
}

func (r *repository) GetSizes(ctx context.Context, ids []int64) ([]SizeLabel, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, sort_order, is_active FROM size_labels WHERE id = ANY($1) ORDER BY sort_order ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []SizeLabel
	for rows.Next() {
		var s SizeLabel
		if err := rows.Scan(&s.ID, &s.Name, &s.SortOrder, &s.IsActive); err != nil {
			return nil, err
		}
		sizes = append(sizes, s)
	}
	return sizes, rows.Err()
}

func (r *repository) CreateSize(ctx context.Context, size SizeLabel) (SizeLabel, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO size_labels (name, sort_order, is_active) VALUES ($1, $2, $3) RETURNING id`,
		size.Name, size.SortOrder, size.IsActive).Scan(&size.ID)
	if err != nil {
		return SizeLabel{}, err
	}
	return size, nil
}

func (r *repository) ListColors(ctx context.Context, activeOnly bool) ([]ColorLabel, error) {
	query := `SELECT id, name, hex, is_active FROM color_labels`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []ColorLabel
	for rows.Next() {
		var c ColorLabel
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &c.IsActive); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

func (r *repository) GetColors(ctx context.Context, ids []int64) ([]ColorLabel, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, hex, is_active FROM color_labels WHERE id = ANY($1) ORDER BY name ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []ColorLabel
	for rows.Next() {
		var c ColorLabel
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &c.IsActive); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

func (r *repository) CreateColor(ctx context.Context, color ColorLabel) (ColorLabel, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO color_labels (name, hex, is_active) VALUES ($1, $2, $3) RETURNING id`,
		color.Name, color.Hex, color.IsActive).Scan(&color.ID)
	if err != nil {
		return ColorLabel{}, err
	}
	return color, nil
}

func (r *repository) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	query := `SELECT id, name, is_active FROM stores`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *repository) GetStore(ctx context.Context, id int64) (Store, error) {
	var s Store
	err := r.db.QueryRow(ctx, `SELECT id, name, is_active FROM stores WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, ErrNotFound
	}
	return s, err
}

func (r *repository) CreateStore(ctx context.Context, store Store) (Store, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO stores (name, is_active) VALUES ($1, $2) RETURNING id`,
		store.Name, store.IsActive).Scan(&store.ID)
	if err != nil {
		return Store{}, err
	}
	return store, nil
}
