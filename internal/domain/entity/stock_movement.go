package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento de stock.
const (
	MovementDirectionEntry = "entrada"
	MovementDirectionExit  = "salida"
)

// Clases de movimiento.
//   - ajuste: escrito por el motor de ajustes; forma parte del libro.
//   - correccion: compensación automática de un saldo negativo; forma parte del libro.
//   - conciliacion: registro de auditoría de un saldo realineado al libro; no suma en el libro.
const (
	MovementKindAdjustment     = "ajuste"
	MovementKindCorrection     = "correccion"
	MovementKindReconciliation = "conciliacion"
)

// MovementCorrelation agrupa los IDs opcionales que originaron el movimiento.
type MovementCorrelation struct {
	SaleID            string
	ShipmentID        string
	ProductionBatchID string
	BulkLoadID        string
}

// StockMovement es un registro inmutable del libro de movimientos de un saldo.
type StockMovement struct {
	ID          string
	StockID     string
	Item        ItemRef
	LocationID  string
	Direction   string          // entrada | salida
	Kind        string          // ajuste | correccion | conciliacion
	Quantity    decimal.Decimal // siempre sin signo
	Reason      string
	ActorID     string
	Correlation MovementCorrelation
	CreatedAt   time.Time
}

// Signed devuelve la contribución con signo del movimiento al saldo.
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Direction == MovementDirectionExit {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// CountsInLedger indica si el movimiento participa en Σ(entradas) − Σ(salidas).
func (m *StockMovement) CountsInLedger() bool {
	return m.Kind != MovementKindReconciliation
}

// DirectionFor deriva la dirección desde el signo de un delta.
func DirectionFor(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return MovementDirectionExit
	}
	return MovementDirectionEntry
}
