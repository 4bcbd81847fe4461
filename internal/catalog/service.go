package catalog

import (
	"context"
	"errors"
	"strings"
)

// Service coordinates catalog reads and writes.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	return s.repo.ListProducts(ctx, filters)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("catalog: invalid product id")
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	if err := validateProduct(product); err != nil {
		return Product{}, err
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return errors.New("catalog: invalid product id")
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, id, product)
}

func (s *Service) ListSizes(ctx context.Context, activeOnly bool) ([]SizeLabel, error) {
	return s.repo.ListSizes(ctx, activeOnly)
}

// GetSizes resolves size ids, failing when any id is unknown. The variant
// matrix must never silently drop a requested axis entry.
func (s *Service) GetSizes(ctx context.Context, ids []int64) ([]SizeLabel, error) {
	if len(ids) == 0 {
		return nil, errors.New("catalog: at least one size required")
	}
	sizes, err := s.repo.GetSizes(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(sizes) != len(dedupeIDs(ids)) {
		return nil, ErrNotFound
	}
	return sizes, nil
}

func (s *Service) CreateSize(ctx context.Context, size SizeLabel) (SizeLabel, error) {
	if strings.TrimSpace(size.Name) == "" {
		return SizeLabel{}, errors.New("catalog: size name is required")
	}
	return s.repo.CreateSize(ctx, size)
}

func (s *Service) ListColors(ctx context.Context, activeOnly bool) ([]ColorLabel, error) {
	return s.repo.ListColors(ctx, activeOnly)
}

// GetColors resolves color ids, failing when any id is unknown.
func (s *Service) GetColors(ctx context.Context, ids []int64) ([]ColorLabel, error) {
	if len(ids) == 0 {
		return nil, errors.New("catalog: at least one color required")
	}
	colors, err := s.repo.GetColors(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(colors) != len(dedupeIDs(ids)) {
		return nil, ErrNotFound
	}
	return colors, nil
}

func (s *Service) CreateColor(ctx context.Context, color ColorLabel) (ColorLabel, error) {
	if strings.TrimSpace(color.Name) == "" {
		return ColorLabel{}, errors.New("catalog: color name is required")
	}
	return s.repo.CreateColor(ctx, color)
}

func (s *Service) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	return s.repo.ListStores(ctx, activeOnly)
}

func (s *Service) GetStore(ctx context.Context, id int64) (Store, error) {
	if id <= 0 {
		return Store{}, errors.New("catalog: invalid store id")
	}
	return s.repo.GetStore(ctx, id)
}

func (s *Service) CreateStore(ctx context.Context, store Store) (Store, error) {
	if strings.TrimSpace(store.Name) == "" {
		return Store{}, errors.New("catalog: store name is required")
	}
	return s.repo.CreateStore(ctx, store)
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("catalog: product code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("catalog: product name is required")
	}
	if p.Price < 0 || p.Cost < 0 {
		return errors.New("catalog: price and cost must be >= 0")
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
