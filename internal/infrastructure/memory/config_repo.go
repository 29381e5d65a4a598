package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.StockConfigRepository = (*ConfigRepo)(nil)

// ConfigRepo umbrales en memoria, una fila por (producto, sucursal).
type ConfigRepo struct {
	s *Store
}

func (r *ConfigRepo) Get(ctx context.Context, productID, branchID string) (*entity.StockConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cfg, ok := r.s.configs[pairKey(productID, branchID)]
	if !ok {
		return nil, nil
	}
	c := *cfg
	return &c, nil
}

func (r *ConfigRepo) Upsert(ctx context.Context, cfg *entity.StockConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(cfg.ProductID, cfg.BranchID)
	if existing, ok := r.s.configs[key]; ok {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		cfg.CreatedBy = existing.CreatedBy
	}
	c := *cfg
	r.s.configs[key] = &c
	return nil
}

func (r *ConfigRepo) CreateIfMissing(ctx context.Context, cfg *entity.StockConfig) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(cfg.ProductID, cfg.BranchID)
	if _, ok := r.s.configs[key]; ok {
		return false, nil
	}
	c := *cfg
	r.s.configs[key] = &c
	return true, nil
}

func (r *ConfigRepo) List(ctx context.Context, filter repository.StockConfigFilter) ([]*entity.StockConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockConfig, 0, len(r.s.configs))
	for _, cfg := range r.s.configs {
		if filter.BranchID != "" && cfg.BranchID != filter.BranchID {
			continue
		}
		if filter.ProductID != "" && cfg.ProductID != filter.ProductID {
			continue
		}
		if filter.ActiveOnly && !cfg.Active {
			continue
		}
		c := *cfg
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}
