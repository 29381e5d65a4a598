package repository

import (
	"context"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// StockConfigFilter filtra configuraciones; campos vacíos no filtran.
type StockConfigFilter struct {
	BranchID   string
	ProductID  string
	ActiveOnly bool
}

// StockConfigRepository es el puerto de umbrales por (producto, sucursal).
type StockConfigRepository interface {
	Get(ctx context.Context, productID, branchID string) (*entity.StockConfig, error)
	// Upsert inserta o actualiza en sitio la fila del par (producto, sucursal).
	Upsert(ctx context.Context, cfg *entity.StockConfig) error
	// CreateIfMissing inserta solo si el par no tiene configuración; devuelve si insertó.
	CreateIfMissing(ctx context.Context, cfg *entity.StockConfig) (bool, error)
	List(ctx context.Context, filter StockConfigFilter) ([]*entity.StockConfig, error)
}
