package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas en alerta_stock. Necesita el pool para que ReplaceActive sea atómico.
type StockAlertRepo struct {
	pool *pgxpool.Pool
}

// NewStockAlertRepository construye el adaptador de alertas.
func NewStockAlertRepository(pool *pgxpool.Pool) *StockAlertRepo {
	return &StockAlertRepo{pool: pool}
}

// ReplaceActive desactiva las alertas del par y reactiva (o crea) la del tipo indicado.
// Una alerta que seguía activa conserva id, created_at y el acuse; una reactivada pierde el acuse.
func (r *StockAlertRepo) ReplaceActive(ctx context.Context, productID, branchID string, alert *entity.StockAlert) error {
	now := time.Now()
	if alert != nil {
		now = alert.UpdatedAt
	}
	keepKind := ""
	if alert != nil {
		keepKind = alert.Kind
	}
	return runInTx(ctx, r.pool, func(q Querier) error {
		// La fila del tipo vigente no se toca aquí: el upsert necesita ver su estado previo.
		if _, err := q.Exec(ctx, `
			UPDATE alerta_stock SET activa = FALSE, updated_at = $3
			WHERE producto_id = $1 AND sucursal_id = $2 AND activa AND tipo <> $4`,
			productID, branchID, now, keepKind); err != nil {
			return wrapErr("deactivate stock alerts", err)
		}
		if alert == nil {
			return nil
		}
		var viewedBy *string
		err := q.QueryRow(ctx, `
			INSERT INTO alerta_stock (id, producto_id, sucursal_id, tipo, mensaje, cantidad, umbral, activa, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9)
			ON CONFLICT (producto_id, sucursal_id, tipo) DO UPDATE SET
				mensaje = EXCLUDED.mensaje,
				cantidad = EXCLUDED.cantidad,
				umbral = EXCLUDED.umbral,
				visto_por = CASE WHEN alerta_stock.activa THEN alerta_stock.visto_por END,
				visto_en = CASE WHEN alerta_stock.activa THEN alerta_stock.visto_en END,
				activa = TRUE,
				updated_at = EXCLUDED.updated_at
			RETURNING id, created_at, visto_por, visto_en`,
			alert.ID, productID, branchID, alert.Kind, alert.Message, alert.Quantity, alert.Threshold,
			alert.CreatedAt, alert.UpdatedAt,
		).Scan(&alert.ID, &alert.CreatedAt, &viewedBy, &alert.ViewedAt)
		if err != nil {
			return wrapErr("upsert stock alert", err)
		}
		alert.ViewedBy = deref(viewedBy)
		alert.Active = true
		return nil
	})
}

func (r *StockAlertRepo) List(ctx context.Context, filter repository.AlertFilter) ([]*entity.StockAlert, error) {
	var where []string
	var args []any
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		where = append(where, fmt.Sprintf("sucursal_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("tipo = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "activa")
	}
	query := `SELECT id, producto_id, sucursal_id, tipo, mensaje, cantidad, umbral, activa, visto_por, visto_en,
		created_at, updated_at FROM alerta_stock`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock alerts", err)
	}
	defer rows.Close()
	out := make([]*entity.StockAlert, 0)
	for rows.Next() {
		var a entity.StockAlert
		var viewedBy *string
		if err := rows.Scan(&a.ID, &a.ProductID, &a.BranchID, &a.Kind, &a.Message, &a.Quantity, &a.Threshold,
			&a.Active, &viewedBy, &a.ViewedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, wrapErr("scan stock alert", err)
		}
		a.ViewedBy = deref(viewedBy)
		out = append(out, &a)
	}
	return out, wrapErr("list stock alerts", rows.Err())
}

func (r *StockAlertRepo) Acknowledge(ctx context.Context, id, actorID string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE alerta_stock SET visto_por = $2, visto_en = $3 WHERE id = $1`, id, actorID, at)
	if err != nil {
		return wrapErr("acknowledge stock alert", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
