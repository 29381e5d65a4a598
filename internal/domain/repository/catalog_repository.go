package repository

import (
	"context"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// ProductRepository es la frontera con el catálogo de productos (solo lectura).
// Los métodos Get devuelven nil, nil si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// ListActive devuelve los productos activos ordenados por nombre.
	ListActive(ctx context.Context) ([]*entity.Product, error)
}

// BranchRepository es la frontera con el maestro de sucursales (solo lectura).
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	List(ctx context.Context) ([]*entity.Branch, error)
}

// UserRepository resuelve actores para el chequeo de privilegios.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
