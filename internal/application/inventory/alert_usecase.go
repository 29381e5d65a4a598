package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/internal/domain/stock"
)

// AlertUseCase deriva alertas persistidas desde la clasificación de pares con configuración explícita.
type AlertUseCase struct {
	configs  repository.StockConfigRepository
	stocks   repository.StockRepository
	products repository.ProductRepository
	alerts   repository.StockAlertRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewAlertUseCase construye el generador de alertas.
func NewAlertUseCase(
	configs repository.StockConfigRepository,
	stocks repository.StockRepository,
	products repository.ProductRepository,
	alerts repository.StockAlertRepository,
	log zerolog.Logger,
) *AlertUseCase {
	return &AlertUseCase{configs: configs, stocks: stocks, products: products, alerts: alerts, log: log, now: time.Now}
}

// RecomputeAlerts reemplaza las alertas activas del par por a lo sumo una del estado actual.
// Sin configuración explícita activa no hace nada.
func (uc *AlertUseCase) RecomputeAlerts(ctx context.Context, productID, branchID string) error {
	cfg, err := uc.configs.Get(ctx, productID, branchID)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.Active {
		return nil
	}
	return uc.recompute(ctx, cfg)
}

// RecomputeAlertsForBranch recalcula todos los pares configurados de la sucursal.
// Continúa ante fallos individuales y los devuelve combinados.
func (uc *AlertUseCase) RecomputeAlertsForBranch(ctx context.Context, branchID string) error {
	configs, err := uc.configs.List(ctx, repository.StockConfigFilter{BranchID: branchID, ActiveOnly: true})
	if err != nil {
		return err
	}
	var errs []error
	for _, cfg := range configs {
		if err := uc.recompute(ctx, cfg); err != nil {
			uc.log.Error().Err(err).Str("product_id", cfg.ProductID).Str("branch_id", cfg.BranchID).
				Msg("recalcular alertas")
			errs = append(errs, err)
		}
	}
	uc.log.Debug().Str("branch_id", branchID).Int("pares", len(configs)).Msg("alertas recalculadas por sucursal")
	return errors.Join(errs...)
}

func (uc *AlertUseCase) recompute(ctx context.Context, cfg *entity.StockConfig) error {
	balance, err := uc.stocks.Get(ctx, entity.ProductItem(cfg.ProductID), cfg.BranchID)
	if err != nil {
		return err
	}
	entry := stock.Configured(cfg, quantityOf(balance))
	c := entry.Classify()

	var alert *entity.StockAlert
	if kind, threshold, ok := alertKindFor(c.State, entry.Thresholds()); ok {
		name := cfg.ProductID
		product, err := uc.products.GetByID(ctx, cfg.ProductID)
		if err != nil {
			return err
		}
		if product != nil {
			name = product.Name
		}
		now := uc.now()
		alert = &entity.StockAlert{
			ID:        uuid.New().String(),
			ProductID: cfg.ProductID,
			BranchID:  cfg.BranchID,
			Kind:      kind,
			Message:   alertMessage(kind, name, c, entry.Thresholds()),
			Quantity:  c.Quantity,
			Threshold: threshold,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return uc.alerts.ReplaceActive(ctx, cfg.ProductID, cfg.BranchID, alert)
}

func alertKindFor(state stock.State, t stock.Thresholds) (string, decimal.Decimal, bool) {
	switch state {
	case stock.StateCritical:
		return entity.AlertKindCritical, t.Min, true
	case stock.StateLow:
		return entity.AlertKindLow, t.ReorderPoint, true
	case stock.StateExcess:
		return entity.AlertKindExcess, t.Max, true
	default:
		return "", decimal.Decimal{}, false
	}
}

func alertMessage(kind, productName string, c stock.Classification, t stock.Thresholds) string {
	switch kind {
	case entity.AlertKindCritical:
		return fmt.Sprintf("Stock crítico de %s: %s unidades (mínimo %s). Reponer %s unidades.",
			productName, c.Quantity.String(), t.Min.String(), c.SuggestedQty.String())
	case entity.AlertKindLow:
		return fmt.Sprintf("Stock bajo de %s: %s unidades (punto de reposición %s).",
			productName, c.Quantity.String(), t.ReorderPoint.String())
	default:
		return fmt.Sprintf("Exceso de stock de %s: %s unidades (máximo %s, excedente %s).",
			productName, c.Quantity.String(), t.Max.String(), c.ExcessAmount.String())
	}
}

// ListAlerts lista alertas según el filtro.
func (uc *AlertUseCase) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]*entity.StockAlert, error) {
	return uc.alerts.List(ctx, filter)
}

// AcknowledgeAlert marca la alerta como vista por el actor.
func (uc *AlertUseCase) AcknowledgeAlert(ctx context.Context, alertID, actorID string) error {
	if alertID == "" || actorID == "" {
		return fmt.Errorf("%w: alerta y actor son requeridos", domain.ErrInvalidInput)
	}
	return uc.alerts.Acknowledge(ctx, alertID, actorID, uc.now())
}

func quantityOf(s *entity.Stock) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return s.Quantity
}
