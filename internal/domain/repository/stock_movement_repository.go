package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// StockMovementRepository es el puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// SumByStock devuelve Σ(entradas) − Σ(salidas) de los movimientos que cuentan en el libro.
	SumByStock(ctx context.Context, stockID string) (decimal.Decimal, error)
	// SumAll devuelve la misma suma para todos los saldos con movimientos, por stockID.
	SumAll(ctx context.Context) (map[string]decimal.Decimal, error)
	ListByStock(ctx context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error)
}
