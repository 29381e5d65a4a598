package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// StockRepo saldos en memoria. Las variantes ForUpdate no bloquean: el TxRunner ya serializa.
type StockRepo struct {
	s *Store
}

func (r *StockRepo) Get(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.stockKeys[stockKey(item, locationID)]
	if !ok {
		return nil, nil
	}
	return r.s.stocks[id].Clone(), nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error) {
	return r.Get(ctx, item, locationID)
}

func (r *StockRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.stocks[id].Clone(), nil
}

func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stockKey(stock.Item, stock.LocationID)
	if _, ok := r.s.stockKeys[key]; ok {
		return domain.ErrConflict
	}
	r.s.stocks[stock.ID] = stock.Clone()
	r.s.stockKeys[key] = stock.ID
	return nil
}

func (r *StockRepo) UpdateQuantity(ctx context.Context, stock *entity.Stock, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.stocks[stock.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrConflict
	}
	stock.Version = expectedVersion + 1
	current.Quantity = stock.Quantity
	current.LastUpdated = stock.LastUpdated
	current.Version = stock.Version
	return nil
}

func (r *StockRepo) list(keep func(*entity.Stock) bool) []*entity.Stock {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Stock, 0, len(r.s.stocks))
	for _, st := range r.s.stocks {
		if keep(st) {
			out = append(out, st.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(func(*entity.Stock) bool { return true }), nil
}

func (r *StockRepo) ListNegative(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(func(st *entity.Stock) bool { return st.Quantity.IsNegative() }), nil
}

func (r *StockRepo) ListProductStocks(ctx context.Context, branchID string) ([]*entity.Stock, error) {
	return r.list(func(st *entity.Stock) bool {
		return st.Item.IsProduct() && (branchID == "" || st.LocationID == branchID)
	}), nil
}

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *movement
	r.s.movements = append(r.s.movements, &c)
	return nil
}

func (r *MovementRepo) SumByStock(ctx context.Context, stockID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.StockID == stockID && m.CountsInLedger() {
			sum = sum.Add(m.Signed())
		}
	}
	return sum, nil
}

func (r *MovementRepo) SumAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.s.movements {
		if m.CountsInLedger() {
			sums[m.StockID] = sums[m.StockID].Add(m.Signed())
		}
	}
	return sums, nil
}

func (r *MovementRepo) ListByStock(ctx context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	skipped := 0
	for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.s.movements[i]
		if m.StockID != stockID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}
