package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationResult informa la versión del esquema tras migrar.
type MigrationResult struct {
	Version uint
	Changed bool
}

// MigrateUp aplica las migraciones pendientes. Un esquema "dirty" es un error.
func MigrateUp(dsn string) (MigrationResult, error) {
	m, err := newMigrate(dsn)
	if err != nil {
		return MigrationResult{}, err
	}
	defer m.Close()

	if _, dirty, err := m.Version(); err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("leer versión: %w", err)
	} else if dirty {
		return MigrationResult{}, errors.New("esquema en estado dirty; revisar manualmente")
	}

	changed := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return MigrationResult{}, fmt.Errorf("aplicar migraciones: %w", err)
		}
		changed = false
	}
	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("leer versión: %w", err)
	}
	return MigrationResult{Version: version, Changed: changed}, nil
}

// MigrateDown revierte la última migración aplicada.
func MigrateDown(dsn string) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revertir migración: %w", err)
	}
	return nil
}

func newMigrate(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones embebidas: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("crear migrate: %w", err)
	}
	return m, nil
}

// migrateURL adapta el esquema del DSN al driver pgx5 de golang-migrate.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
