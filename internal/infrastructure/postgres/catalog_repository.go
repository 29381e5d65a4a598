package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

const productColumns = `id, nombre, codigo_barras, categoria_id, stock_minimo, activo`

// ProductRepo lectura del catálogo de productos.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var barcode, categoryID *string
	if err := row.Scan(&p.ID, &p.Name, &barcode, &categoryID, &p.DefaultMinStock, &p.Active); err != nil {
		return nil, err
	}
	p.Barcode, p.CategoryID = deref(barcode), deref(categoryID)
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM productos WHERE id = $1`, id)
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by barcode", `SELECT `+productColumns+` FROM productos WHERE codigo_barras = $1`, barcode)
}

// ListActive ordena por nombre en SQL; el orden fino por locale lo aplica quien consume.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM productos WHERE activo ORDER BY nombre, id`)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()
	out := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		out = append(out, p)
	}
	return out, wrapErr("list products", rows.Err())
}

// BranchRepo lectura de sucursales.
type BranchRepo struct {
	q Querier
}

func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	var b entity.Branch
	err := r.q.QueryRow(ctx, `SELECT id, nombre, tipo FROM sucursales WHERE id = $1`, id).Scan(&b.ID, &b.Name, &b.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get branch", err)
	}
	return &b, nil
}

func (r *BranchRepo) List(ctx context.Context) ([]*entity.Branch, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, tipo FROM sucursales ORDER BY nombre, id`)
	if err != nil {
		return nil, wrapErr("list branches", err)
	}
	defer rows.Close()
	out := make([]*entity.Branch, 0)
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Type); err != nil {
			return nil, wrapErr("scan branch", err)
		}
		out = append(out, &b)
	}
	return out, wrapErr("list branches", rows.Err())
}

// UserRepo lectura de usuarios para resolver roles.
type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, `SELECT id, nombre, rol, estado FROM usuarios WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get user", err)
	}
	return &u, nil
}
