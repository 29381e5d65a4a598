package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/control-stock/internal/domain"
)

func TestWrapErr_TraduceCodigos(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))

	unique := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, wrapErr("create stock", unique), domain.ErrConflict)

	for _, code := range []string{"08006", "40001", "40P01", "53300", "57P01"} {
		err := wrapErr("update stock", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrUnavailable, code)
	}

	other := wrapErr("update stock", &pgconn.PgError{Code: "23514"})
	assert.False(t, errors.Is(other, domain.ErrUnavailable))
	assert.False(t, errors.Is(other, domain.ErrConflict))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/stock?sslmode=disable", migrateURL("postgres://u:p@db:5432/stock?sslmode=disable"))
	assert.Equal(t, "pgx5://db/stock", migrateURL("postgresql://db/stock"))
	assert.Equal(t, "pgx5://db/stock", migrateURL("pgx5://db/stock"))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", deref(nullable("x")))
	assert.Equal(t, "", deref(nil))
}
