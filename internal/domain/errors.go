package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidConfiguration = errors.New("configuración de stock inválida")
	ErrResolution           = errors.New("producto no resuelto")
	ErrUnavailable          = errors.New("almacén de stock no disponible")
	ErrLockNotObtained      = errors.New("no se obtuvo el bloqueo")
)

// InsufficientStockError detalla una salida rechazada por dejar el saldo en negativo.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %s, solicitado %s", e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ConfigRuleError indica qué regla de umbrales se violó.
type ConfigRuleError struct {
	Rule string
}

func (e *ConfigRuleError) Error() string {
	return "configuración de stock inválida: " + e.Rule
}

func (e *ConfigRuleError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
