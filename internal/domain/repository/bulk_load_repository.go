package repository

import (
	"context"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// BulkLoadRepository es el puerto de cargas masivas y sus líneas.
type BulkLoadRepository interface {
	Create(ctx context.Context, load *entity.BulkLoad) error
	AddItem(ctx context.Context, item *entity.BulkLoadItem) error
	// Finalize guarda estado, contadores y fecha de fin.
	Finalize(ctx context.Context, load *entity.BulkLoad) error
	GetByID(ctx context.Context, id string) (*entity.BulkLoad, error)
	ListItems(ctx context.Context, bulkLoadID string) ([]*entity.BulkLoadItem, error)
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.BulkLoad, error)
}
