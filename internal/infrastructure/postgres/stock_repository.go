package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

const stockColumns = `id, producto_id, insumo_id, ubicacion_id, cantidad, version, ultima_actualizacion`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	var productID, insumoID *string
	if err := row.Scan(&s.ID, &productID, &insumoID, &s.LocationID, &s.Quantity, &s.Version, &s.LastUpdated); err != nil {
		return nil, err
	}
	s.Item = entity.ItemRef{ProductID: deref(productID), InsumoID: deref(insumoID)}
	return &s, nil
}

func (r *StockRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return s, nil
}

// itemPredicate arma el filtro por producto o insumo (los índices únicos son parciales).
func itemPredicate(item entity.ItemRef) (string, string) {
	if item.IsProduct() {
		return "producto_id = $1", item.ProductID
	}
	return "insumo_id = $1", item.InsumoID
}

// Get obtiene el saldo de un ítem en una ubicación.
func (r *StockRepo) Get(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error) {
	pred, id := itemPredicate(item)
	return r.getOne(ctx, "get stock",
		`SELECT `+stockColumns+` FROM stock WHERE `+pred+` AND ubicacion_id = $2`, id, locationID)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, item entity.ItemRef, locationID string) (*entity.Stock, error) {
	pred, id := itemPredicate(item)
	return r.getOne(ctx, "get stock for update",
		`SELECT `+stockColumns+` FROM stock WHERE `+pred+` AND ubicacion_id = $2 FOR UPDATE`, id, locationID)
}

func (r *StockRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock by id for update",
		`SELECT `+stockColumns+` FROM stock WHERE id = $1 FOR UPDATE`, id)
}

// Create inserta el saldo; la carrera entre dos primeros ajustes termina en ErrConflict.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (id, producto_id, insumo_id, ubicacion_id, cantidad, version, ultima_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		stock.ID, nullable(stock.Item.ProductID), nullable(stock.Item.InsumoID), stock.LocationID,
		stock.Quantity, stock.Version, stock.LastUpdated,
	)
	return wrapErr("create stock", err)
}

// UpdateQuantity aplica compare-and-set sobre la versión.
func (r *StockRepo) UpdateQuantity(ctx context.Context, stock *entity.Stock, expectedVersion int64) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock SET cantidad = $2, ultima_actualizacion = $3, version = version + 1
		WHERE id = $1 AND version = $4`,
		stock.ID, stock.Quantity, stock.LastUpdated, expectedVersion,
	)
	if err != nil {
		return wrapErr("update stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	stock.Version = expectedVersion + 1
	return nil
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	out := make([]*entity.Stock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, s)
	}
	return out, wrapErr(op, rows.Err())
}

func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, "list stock", `SELECT `+stockColumns+` FROM stock ORDER BY id`)
}

func (r *StockRepo) ListNegative(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, "list negative stock", `SELECT `+stockColumns+` FROM stock WHERE cantidad < 0 ORDER BY id`)
}

func (r *StockRepo) ListProductStocks(ctx context.Context, branchID string) ([]*entity.Stock, error) {
	if branchID == "" {
		return r.list(ctx, "list product stock",
			`SELECT `+stockColumns+` FROM stock WHERE producto_id IS NOT NULL`)
	}
	return r.list(ctx, "list product stock",
		`SELECT `+stockColumns+` FROM stock WHERE producto_id IS NOT NULL AND ubicacion_id = $1`, branchID)
}

// StockMovementRepo libro de movimientos sobre PostgreSQL (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// ledgerSum excluye las conciliaciones, que solo dejan rastro.
const ledgerSum = `COALESCE(SUM(CASE WHEN direccion = 'entrada' THEN cantidad ELSE -cantidad END)
		FILTER (WHERE tipo <> 'conciliacion'), 0)`

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO movimiento_stock (id, stock_id, producto_id, insumo_id, ubicacion_id, direccion, tipo, cantidad,
			motivo, usuario_id, venta_id, envio_id, lote_produccion_id, carga_masiva_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.ID, m.StockID, nullable(m.Item.ProductID), nullable(m.Item.InsumoID), m.LocationID,
		m.Direction, m.Kind, m.Quantity, m.Reason, m.ActorID,
		nullable(m.Correlation.SaleID), nullable(m.Correlation.ShipmentID),
		nullable(m.Correlation.ProductionBatchID), nullable(m.Correlation.BulkLoadID), m.CreatedAt,
	)
	return wrapErr("create stock movement", err)
}

func (r *StockMovementRepo) SumByStock(ctx context.Context, stockID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT `+ledgerSum+` FROM movimiento_stock WHERE stock_id = $1`, stockID).Scan(&sum)
	if err != nil {
		return decimal.Zero, wrapErr("sum stock movements", err)
	}
	return sum, nil
}

func (r *StockMovementRepo) SumAll(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT stock_id, `+ledgerSum+` FROM movimiento_stock GROUP BY stock_id`)
	if err != nil {
		return nil, wrapErr("sum all movements", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id string
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, wrapErr("scan movement sum", err)
		}
		out[id] = sum
	}
	return out, wrapErr("sum all movements", rows.Err())
}

// ListByStock lista los movimientos de un saldo, más recientes primero.
func (r *StockMovementRepo) ListByStock(ctx context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, stock_id, producto_id, insumo_id, ubicacion_id, direccion, tipo, cantidad, motivo, usuario_id,
			venta_id, envio_id, lote_produccion_id, carga_masiva_id, created_at
		FROM movimiento_stock WHERE stock_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, stockID, limit, offset)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()
	out := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		var productID, insumoID, saleID, shipmentID, batchID, bulkID *string
		if err := rows.Scan(&m.ID, &m.StockID, &productID, &insumoID, &m.LocationID, &m.Direction, &m.Kind,
			&m.Quantity, &m.Reason, &m.ActorID, &saleID, &shipmentID, &batchID, &bulkID, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan stock movement", err)
		}
		m.Item = entity.ItemRef{ProductID: deref(productID), InsumoID: deref(insumoID)}
		m.Correlation = entity.MovementCorrelation{
			SaleID:            deref(saleID),
			ShipmentID:        deref(shipmentID),
			ProductionBatchID: deref(batchID),
			BulkLoadID:        deref(bulkID),
		}
		out = append(out, &m)
	}
	return out, wrapErr("list stock movements", rows.Err())
}
