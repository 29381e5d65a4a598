package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.BulkLoadRepository = (*BulkLoadRepo)(nil)

// BulkLoadRepo cargas masivas en memoria.
type BulkLoadRepo struct {
	s *Store
}

func (r *BulkLoadRepo) Create(ctx context.Context, load *entity.BulkLoad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.loads[load.ID]; ok {
		return domain.ErrConflict
	}
	c := *load
	r.s.loads[load.ID] = &c
	return nil
}

func (r *BulkLoadRepo) AddItem(ctx context.Context, item *entity.BulkLoadItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.loads[item.BulkLoadID]; !ok {
		return domain.ErrNotFound
	}
	c := *item
	r.s.loadItems[item.BulkLoadID] = append(r.s.loadItems[item.BulkLoadID], &c)
	return nil
}

func (r *BulkLoadRepo) Finalize(ctx context.Context, load *entity.BulkLoad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.loads[load.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Status = load.Status
	current.ProcessedItems = load.ProcessedItems
	current.ErrorItems = load.ErrorItems
	current.FinishedAt = load.FinishedAt
	return nil
}

func (r *BulkLoadRepo) GetByID(ctx context.Context, id string) (*entity.BulkLoad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	load, ok := r.s.loads[id]
	if !ok {
		return nil, nil
	}
	c := *load
	return &c, nil
}

func (r *BulkLoadRepo) ListItems(ctx context.Context, bulkLoadID string) ([]*entity.BulkLoadItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := r.s.loadItems[bulkLoadID]
	out := make([]*entity.BulkLoadItem, 0, len(items))
	for _, it := range items {
		c := *it
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out, nil
}

func (r *BulkLoadRepo) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.BulkLoad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.BulkLoad, 0, len(r.s.loads))
	for _, load := range r.s.loads {
		if branchID == "" || load.BranchID == branchID {
			c := *load
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.After(all[j].StartedAt) })
	if offset >= len(all) {
		return []*entity.BulkLoad{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
