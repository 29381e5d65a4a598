package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.Barcode != "" && p.Barcode == barcode {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if p.Active {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// BranchRepo sucursales en memoria.
type BranchRepo struct {
	s *Store
}

func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *BranchRepo) List(ctx context.Context) ([]*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}
