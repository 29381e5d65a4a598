package repository

import (
	"context"
	"time"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// AlertFilter filtra alertas; campos vacíos no filtran.
type AlertFilter struct {
	BranchID   string
	Kind       string
	ActiveOnly bool
}

// StockAlertRepository es el puerto de alertas de stock.
type StockAlertRepository interface {
	// ReplaceActive desactiva las alertas activas del par y, si alert no es nil, reactiva
	// o crea la fila de su tipo con valores frescos. Todo en una sola operación atómica.
	ReplaceActive(ctx context.Context, productID, branchID string, alert *entity.StockAlert) error
	List(ctx context.Context, filter AlertFilter) ([]*entity.StockAlert, error)
	// Acknowledge marca la alerta como vista; ErrNotFound si no existe.
	Acknowledge(ctx context.Context, id, actorID string, at time.Time) error
}
