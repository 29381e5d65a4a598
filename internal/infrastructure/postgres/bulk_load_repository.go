package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.BulkLoadRepository = (*BulkLoadRepo)(nil)

const bulkLoadColumns = `id, nombre, descripcion, sucursal_id, modo, estado, total_items, items_procesados,
	items_con_error, creado_por, fecha_inicio, fecha_fin`

// BulkLoadRepo cargas masivas (carga_masiva_stock) y sus líneas (carga_masiva_stock_item).
type BulkLoadRepo struct {
	q Querier
}

// NewBulkLoadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBulkLoadRepository(q Querier) *BulkLoadRepo {
	return &BulkLoadRepo{q: q}
}

func scanBulkLoad(row pgx.Row) (*entity.BulkLoad, error) {
	var b entity.BulkLoad
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.BranchID, &b.Mode, &b.Status, &b.TotalItems,
		&b.ProcessedItems, &b.ErrorItems, &b.CreatedBy, &b.StartedAt, &b.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BulkLoadRepo) Create(ctx context.Context, b *entity.BulkLoad) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO carga_masiva_stock (`+bulkLoadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Name, b.Description, b.BranchID, b.Mode, b.Status, b.TotalItems,
		b.ProcessedItems, b.ErrorItems, b.CreatedBy, b.StartedAt, b.FinishedAt,
	)
	return wrapErr("create bulk load", err)
}

func (r *BulkLoadRepo) AddItem(ctx context.Context, it *entity.BulkLoadItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO carga_masiva_stock_item (id, carga_masiva_id, linea, producto_id, codigo_barras, nombre, cantidad,
			producto_resuelto_id, cantidad_anterior, cantidad_posterior, estado, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		it.ID, it.BulkLoadID, it.LineNumber, nullable(it.ProductID), nullable(it.Barcode), nullable(it.Name),
		it.Quantity, nullable(it.ResolvedProductID), it.QuantityBefore, it.QuantityAfter, it.Status, it.Error,
		it.CreatedAt,
	)
	return wrapErr("add bulk load item", err)
}

func (r *BulkLoadRepo) Finalize(ctx context.Context, b *entity.BulkLoad) error {
	_, err := r.q.Exec(ctx, `
		UPDATE carga_masiva_stock
		SET estado = $2, total_items = $3, items_procesados = $4, items_con_error = $5, fecha_fin = $6
		WHERE id = $1`,
		b.ID, b.Status, b.TotalItems, b.ProcessedItems, b.ErrorItems, b.FinishedAt,
	)
	return wrapErr("finalize bulk load", err)
}

func (r *BulkLoadRepo) GetByID(ctx context.Context, id string) (*entity.BulkLoad, error) {
	b, err := scanBulkLoad(r.q.QueryRow(ctx, `SELECT `+bulkLoadColumns+` FROM carga_masiva_stock WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get bulk load", err)
	}
	return b, nil
}

func (r *BulkLoadRepo) ListItems(ctx context.Context, bulkLoadID string) ([]*entity.BulkLoadItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, carga_masiva_id, linea, producto_id, codigo_barras, nombre, cantidad, producto_resuelto_id,
			cantidad_anterior, cantidad_posterior, estado, error, created_at
		FROM carga_masiva_stock_item WHERE carga_masiva_id = $1 ORDER BY linea`, bulkLoadID)
	if err != nil {
		return nil, wrapErr("list bulk load items", err)
	}
	defer rows.Close()
	out := make([]*entity.BulkLoadItem, 0)
	for rows.Next() {
		var it entity.BulkLoadItem
		var productID, barcode, name, resolved *string
		if err := rows.Scan(&it.ID, &it.BulkLoadID, &it.LineNumber, &productID, &barcode, &name, &it.Quantity,
			&resolved, &it.QuantityBefore, &it.QuantityAfter, &it.Status, &it.Error, &it.CreatedAt); err != nil {
			return nil, wrapErr("scan bulk load item", err)
		}
		it.ProductID, it.Barcode, it.Name, it.ResolvedProductID = deref(productID), deref(barcode), deref(name), deref(resolved)
		out = append(out, &it)
	}
	return out, wrapErr("list bulk load items", rows.Err())
}

func (r *BulkLoadRepo) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.BulkLoad, error) {
	// branchID vacío lista todas las sucursales.
	rows, err := r.q.Query(ctx, `
		SELECT `+bulkLoadColumns+` FROM carga_masiva_stock
		WHERE ($1 = '' OR sucursal_id = $1) ORDER BY fecha_inicio DESC LIMIT $2 OFFSET $3`, branchID, limit, offset)
	if err != nil {
		return nil, wrapErr("list bulk loads", err)
	}
	defer rows.Close()
	out := make([]*entity.BulkLoad, 0)
	for rows.Next() {
		b, err := scanBulkLoad(rows)
		if err != nil {
			return nil, wrapErr("scan bulk load", err)
		}
		out = append(out, b)
	}
	return out, wrapErr("list bulk loads", rows.Err())
}
