package repository

import (
	"context"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// StockRepository es el puerto del almacén de saldos (tabla stock).
// Las variantes ForUpdate bloquean la fila hasta el fin de la transacción.
type StockRepository interface {
	// Get devuelve nil, nil si el saldo no existe.
	Get(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error)
	GetForUpdate(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Stock, error)
	// Create inserta un saldo nuevo; ErrConflict si otro proceso lo creó primero.
	Create(ctx context.Context, stock *entity.Stock) error
	// UpdateQuantity guarda Quantity/LastUpdated solo si la versión persistida es expectedVersion
	// y deja stock.Version = expectedVersion+1. ErrConflict si la versión cambió.
	UpdateQuantity(ctx context.Context, stock *entity.Stock, expectedVersion int64) error
	ListAll(ctx context.Context) ([]*entity.Stock, error)
	ListNegative(ctx context.Context) ([]*entity.Stock, error)
	// ListProductStocks lista saldos de productos; branchID vacío = todas las sucursales.
	ListProductStocks(ctx context.Context, branchID string) ([]*entity.Stock, error)
}
