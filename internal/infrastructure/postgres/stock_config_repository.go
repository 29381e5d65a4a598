package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ repository.StockConfigRepository = (*StockConfigRepo)(nil)

const stockConfigColumns = `id, producto_id, sucursal_id, stock_maximo, stock_minimo, punto_reposicion,
	creado_por, activo, created_at, updated_at`

// StockConfigRepo umbrales por (producto, sucursal) en stock_config_sucursal.
type StockConfigRepo struct {
	q Querier
}

// NewStockConfigRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockConfigRepository(q Querier) *StockConfigRepo {
	return &StockConfigRepo{q: q}
}

func scanStockConfig(row pgx.Row) (*entity.StockConfig, error) {
	var c entity.StockConfig
	err := row.Scan(&c.ID, &c.ProductID, &c.BranchID, &c.StockMax, &c.StockMin, &c.ReorderPoint,
		&c.CreatedBy, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StockConfigRepo) Get(ctx context.Context, productID, branchID string) (*entity.StockConfig, error) {
	c, err := scanStockConfig(r.q.QueryRow(ctx,
		`SELECT `+stockConfigColumns+` FROM stock_config_sucursal WHERE producto_id = $1 AND sucursal_id = $2`,
		productID, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stock config", err)
	}
	return c, nil
}

// Upsert actualiza en sitio; id, creado_por y created_at de la fila existente se conservan
// y se devuelven en cfg.
func (r *StockConfigRepo) Upsert(ctx context.Context, cfg *entity.StockConfig) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_config_sucursal (id, producto_id, sucursal_id, stock_maximo, stock_minimo, punto_reposicion,
			creado_por, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (producto_id, sucursal_id) DO UPDATE SET
			stock_maximo = EXCLUDED.stock_maximo,
			stock_minimo = EXCLUDED.stock_minimo,
			punto_reposicion = EXCLUDED.punto_reposicion,
			activo = EXCLUDED.activo,
			updated_at = EXCLUDED.updated_at
		RETURNING id, creado_por, created_at`,
		cfg.ID, cfg.ProductID, cfg.BranchID, cfg.StockMax, cfg.StockMin, cfg.ReorderPoint,
		cfg.CreatedBy, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt,
	).Scan(&cfg.ID, &cfg.CreatedBy, &cfg.CreatedAt)
	return wrapErr("upsert stock config", err)
}

func (r *StockConfigRepo) CreateIfMissing(ctx context.Context, cfg *entity.StockConfig) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO stock_config_sucursal (id, producto_id, sucursal_id, stock_maximo, stock_minimo, punto_reposicion,
			creado_por, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (producto_id, sucursal_id) DO NOTHING`,
		cfg.ID, cfg.ProductID, cfg.BranchID, cfg.StockMax, cfg.StockMin, cfg.ReorderPoint,
		cfg.CreatedBy, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return false, wrapErr("create stock config", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *StockConfigRepo) List(ctx context.Context, filter repository.StockConfigFilter) ([]*entity.StockConfig, error) {
	var where []string
	var args []any
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		where = append(where, fmt.Sprintf("sucursal_id = $%d", len(args)))
	}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		where = append(where, fmt.Sprintf("producto_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "activo")
	}
	query := `SELECT ` + stockConfigColumns + ` FROM stock_config_sucursal`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sucursal_id, producto_id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock config", err)
	}
	defer rows.Close()
	out := make([]*entity.StockConfig, 0)
	for rows.Next() {
		c, err := scanStockConfig(rows)
		if err != nil {
			return nil, wrapErr("scan stock config", err)
		}
		out = append(out, c)
	}
	return out, wrapErr("list stock config", rows.Err())
}
