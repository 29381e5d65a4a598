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
)

// quantityScale decimales que admiten las columnas de cantidad.
const quantityScale = 4

// maxAdjustAttempts reintentos ante conflicto de versión o de alta concurrente del saldo.
const maxAdjustAttempts = 3

// AdjustStockUseCase es la única primitiva de escritura sobre saldos: en una transacción
// bloquea la fila (SELECT FOR UPDATE + versión), aplica el delta y agrega un movimiento.
type AdjustStockUseCase struct {
	txRunner  TxRunner
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
	products  repository.ProductRepository
	branches  repository.BranchRepository
	auth      AuthorizationProvider
	log       zerolog.Logger
	now       func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	stocks repository.StockRepository,
	movements repository.StockMovementRepository,
	products repository.ProductRepository,
	branches repository.BranchRepository,
	auth AuthorizationProvider,
	log zerolog.Logger,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:  txRunner,
		stocks:    stocks,
		movements: movements,
		products:  products,
		branches:  branches,
		auth:      auth,
		log:       log,
		now:       time.Now,
	}
}

// AdjustStockInput entrada de AdjustStock. Delta positivo = entrada, negativo = salida.
type AdjustStockInput struct {
	Item          entity.ItemRef
	LocationID    string
	Delta         decimal.Decimal
	Reason        string
	ActorID       string
	Correlation   entity.MovementCorrelation
	AllowNegative bool
}

// AdjustStockResult saldo resultante y movimiento agregado.
type AdjustStockResult struct {
	Stock    *entity.Stock
	Movement *entity.StockMovement
}

// AdjustStock aplica un delta con signo al saldo (ítem, ubicación), creándolo si no existe.
// Una salida que deja el saldo negativo falla con *domain.InsufficientStockError salvo que el
// actor sea privilegiado o AllowNegative esté activo.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*AdjustStockResult, error) {
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}

	privileged := in.AllowNegative
	if !privileged {
		// Unknown cuenta como no privilegiado.
		privileged = uc.auth.Privilege(ctx, in.ActorID) == PrivilegePrivileged
	}

	var (
		res *AdjustStockResult
		err error
	)
	for attempt := 1; attempt <= maxAdjustAttempts; attempt++ {
		res, err = uc.adjustOnce(ctx, in, privileged)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
		uc.log.Debug().Int("intento", attempt).Str("item", in.Item.Key()).Str("location_id", in.LocationID).
			Msg("conflicto de concurrencia en saldo, reintentando")
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Warn().Str("item", in.Item.Key()).Str("location_id", in.LocationID).
				Str("actor_id", in.ActorID).Str("delta", in.Delta.String()).Msg("ajuste rechazado por stock insuficiente")
		}
		return nil, err
	}
	return res, nil
}

func (uc *AdjustStockUseCase) validate(ctx context.Context, in AdjustStockInput) error {
	if !in.Item.Valid() {
		return fmt.Errorf("%w: se requiere exactamente uno de producto o insumo", domain.ErrInvalidInput)
	}
	if in.LocationID == "" {
		return fmt.Errorf("%w: ubicación requerida", domain.ErrInvalidInput)
	}
	if in.Delta.IsZero() {
		return fmt.Errorf("%w: el delta no puede ser cero", domain.ErrInvalidInput)
	}
	if !in.Delta.Equal(in.Delta.Round(quantityScale)) {
		return fmt.Errorf("%w: el delta admite a lo sumo %d decimales", domain.ErrInvalidInput, quantityScale)
	}
	if in.Item.IsProduct() {
		product, err := uc.products.GetByID(ctx, in.Item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s inexistente", domain.ErrInvalidInput, in.Item.ProductID)
		}
	}
	branch, err := uc.branches.GetByID(ctx, in.LocationID)
	if err != nil {
		return err
	}
	if branch == nil {
		return fmt.Errorf("%w: ubicación %s inexistente", domain.ErrInvalidInput, in.LocationID)
	}
	return nil
}

func (uc *AdjustStockUseCase) adjustOnce(ctx context.Context, in AdjustStockInput, privileged bool) (*AdjustStockResult, error) {
	now := uc.now()
	var res *AdjustStockResult

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, in.Item, in.LocationID)
		if err != nil {
			return err
		}

		if stock == nil {
			if in.Delta.IsNegative() && !privileged {
				return &domain.InsufficientStockError{Available: decimal.Zero, Requested: in.Delta.Neg()}
			}
			stock = &entity.Stock{
				ID:          uuid.New().String(),
				Item:        in.Item,
				LocationID:  in.LocationID,
				Quantity:    decimal.Zero,
				LastUpdated: now,
			}
			if !in.Delta.IsNegative() {
				stock.Quantity = in.Delta
				stock.Version = 1
			}
			if err := stockRepo.Create(ctx, stock); err != nil {
				return err
			}
			// Saldo nuevo que nace negativo: se crea en 0 y se aplica el delta como un ajuste más.
			if in.Delta.IsNegative() {
				if err := applyDelta(ctx, stockRepo, stock, in.Delta, now); err != nil {
					return err
				}
			}
		} else {
			if stock.Quantity.Add(in.Delta).IsNegative() && !privileged {
				return &domain.InsufficientStockError{Available: stock.Quantity, Requested: in.Delta.Neg()}
			}
			if err := applyDelta(ctx, stockRepo, stock, in.Delta, now); err != nil {
				return err
			}
		}

		mov := &entity.StockMovement{
			ID:          uuid.New().String(),
			StockID:     stock.ID,
			Item:        in.Item,
			LocationID:  in.LocationID,
			Direction:   entity.DirectionFor(in.Delta),
			Kind:        entity.MovementKindAdjustment,
			Quantity:    in.Delta.Abs(),
			Reason:      in.Reason,
			ActorID:     in.ActorID,
			Correlation: in.Correlation,
			CreatedAt:   now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		res = &AdjustStockResult{Stock: stock.Clone(), Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func applyDelta(ctx context.Context, stockRepo repository.StockRepository, stock *entity.Stock, delta decimal.Decimal, now time.Time) error {
	expected := stock.Version
	stock.Quantity = stock.Quantity.Add(delta)
	stock.LastUpdated = now
	return stockRepo.UpdateQuantity(ctx, stock, expected)
}

// GetBalance devuelve el saldo actual; nil si nunca se ajustó.
func (uc *AdjustStockUseCase) GetBalance(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error) {
	if !item.Valid() || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stocks.Get(ctx, item, locationID)
}

// ListMovements lista el historial de movimientos de un saldo, más reciente primero.
func (uc *AdjustStockUseCase) ListMovements(ctx context.Context, item entity.ItemRef, locationID string, limit, offset int) ([]*entity.StockMovement, error) {
	stock, err := uc.GetBalance(ctx, item, locationID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return []*entity.StockMovement{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movements.ListByStock(ctx, stock.ID, limit, offset)
}
