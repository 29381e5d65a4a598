package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas en memoria.
type AlertRepo struct {
	s *Store
}

func (r *AlertRepo) ReplaceActive(ctx context.Context, productID, branchID string, alert *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if alert != nil {
		now = alert.UpdatedAt
	}
	var (
		reuse     *entity.StockAlert
		wasActive bool
	)
	for _, a := range r.s.alerts {
		if a.ProductID != productID || a.BranchID != branchID {
			continue
		}
		if alert != nil && a.Kind == alert.Kind {
			wasActive = a.Active
		}
		if a.Active {
			a.Active = false
			a.UpdatedAt = now
		}
		if alert != nil && a.Kind == alert.Kind {
			reuse = a
		}
	}
	if alert == nil {
		return nil
	}
	if reuse != nil {
		alert.ID = reuse.ID
		alert.CreatedAt = reuse.CreatedAt
		alert.ViewedBy, alert.ViewedAt = "", nil
		// El acuse solo sobrevive si la alerta seguía activa; una reactivación es un incidente nuevo.
		if wasActive {
			alert.ViewedBy = reuse.ViewedBy
			alert.ViewedAt = reuse.ViewedAt
		}
		*reuse = *alert
		reuse.Active = true
		return nil
	}
	c := *alert
	c.Active = true
	r.s.alerts = append(r.s.alerts, &c)
	return nil
}

func (r *AlertRepo) List(ctx context.Context, filter repository.AlertFilter) ([]*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockAlert, 0)
	for _, a := range r.s.alerts {
		if filter.BranchID != "" && a.BranchID != filter.BranchID {
			continue
		}
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		if filter.ActiveOnly && !a.Active {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *AlertRepo) Acknowledge(ctx context.Context, id, actorID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.ID == id {
			a.ViewedBy = actorID
			a.ViewedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}
