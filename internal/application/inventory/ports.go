package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/control-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ni el saldo ni el movimiento quedan visibles.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Privilege es el resultado tipado del chequeo de privilegios de un actor.
type Privilege int

const (
	PrivilegeUnknown Privilege = iota
	PrivilegePrivileged
	PrivilegeUnprivileged
)

func (p Privilege) String() string {
	switch p {
	case PrivilegePrivileged:
		return "privilegiado"
	case PrivilegeUnprivileged:
		return "no_privilegiado"
	default:
		return "desconocido"
	}
}

// AuthorizationProvider resuelve si un actor puede dejar saldos en negativo.
type AuthorizationProvider interface {
	Privilege(ctx context.Context, actorID string) Privilege
}

// DashboardInvalidator descarta tableros cacheados cuando cambian saldos o umbrales.
type DashboardInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Unlock libera un bloqueo obtenido con Locker.
type Unlock func(ctx context.Context) error

// Locker obtiene bloqueos con expiración; domain.ErrLockNotObtained si está tomado.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}
