package inventory

import (
	"context"
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

// ThresholdConfigUseCase administra los umbrales por (producto, sucursal).
// No recalcula alertas: eso queda a cargo del llamador.
type ThresholdConfigUseCase struct {
	configs  repository.StockConfigRepository
	products repository.ProductRepository
	branches repository.BranchRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewThresholdConfigUseCase construye el caso de uso.
func NewThresholdConfigUseCase(
	configs repository.StockConfigRepository,
	products repository.ProductRepository,
	branches repository.BranchRepository,
	log zerolog.Logger,
) *ThresholdConfigUseCase {
	return &ThresholdConfigUseCase{configs: configs, products: products, branches: branches, log: log, now: time.Now}
}

// UpsertThresholdConfigInput entrada de Upsert. Active nil conserva el valor actual (true si es nueva).
type UpsertThresholdConfigInput struct {
	ProductID    string
	BranchID     string
	StockMax     decimal.Decimal
	StockMin     decimal.Decimal
	ReorderPoint decimal.Decimal
	Active       *bool
	ActorID      string
}

// Upsert valida y guarda la configuración del par; una segunda llamada actualiza en sitio.
func (uc *ThresholdConfigUseCase) Upsert(ctx context.Context, in UpsertThresholdConfigInput) (*entity.StockConfig, error) {
	if in.ProductID == "" || in.BranchID == "" {
		return nil, fmt.Errorf("%w: producto y sucursal son requeridos", domain.ErrInvalidInput)
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	branch, err := uc.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, in.BranchID)
	}
	if err := stock.ValidateThresholds(stock.Thresholds{
		Max:          in.StockMax,
		Min:          in.StockMin,
		ReorderPoint: in.ReorderPoint,
	}); err != nil {
		return nil, err
	}

	now := uc.now()
	cfg, err := uc.configs.Get(ctx, in.ProductID, in.BranchID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &entity.StockConfig{
			ID:        uuid.New().String(),
			ProductID: in.ProductID,
			BranchID:  in.BranchID,
			CreatedBy: in.ActorID,
			Active:    true,
			CreatedAt: now,
		}
	}
	cfg.StockMax = in.StockMax
	cfg.StockMin = in.StockMin
	cfg.ReorderPoint = in.ReorderPoint
	if in.Active != nil {
		cfg.Active = *in.Active
	}
	cfg.UpdatedAt = now

	if err := uc.configs.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", cfg.ProductID).Str("branch_id", cfg.BranchID).
		Str("max", cfg.StockMax.String()).Str("min", cfg.StockMin.String()).
		Str("reposicion", cfg.ReorderPoint.String()).Msg("umbrales guardados")
	return cfg, nil
}

// List lista configuraciones según el filtro.
func (uc *ThresholdConfigUseCase) List(ctx context.Context, filter repository.StockConfigFilter) ([]*entity.StockConfig, error) {
	return uc.configs.List(ctx, filter)
}
