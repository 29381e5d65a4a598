package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una carga masiva.
const (
	BulkLoadStatusProcessing          = "procesando"
	BulkLoadStatusCompleted           = "completado"
	BulkLoadStatusCompletedWithErrors = "completado_con_errores"
)

// Modos de cálculo del delta de cada línea.
const (
	BulkLoadModeIncrement = "increment"
	BulkLoadModeSet       = "set"
	BulkLoadModeDecrement = "decrement"
)

// Estado de cada línea procesada.
const (
	BulkLoadItemProcessed = "processed"
	BulkLoadItemError     = "error"
)

// BulkLoad es un lote de conteo o recepción aplicado a una sucursal (carga_masiva_stock).
type BulkLoad struct {
	ID             string
	Name           string
	Description    string
	BranchID       string
	Mode           string
	Status         string
	TotalItems     int
	ProcessedItems int
	ErrorItems     int
	CreatedBy      string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// BulkLoadItem es el rastro de auditoría de una línea (carga_masiva_stock_item).
type BulkLoadItem struct {
	ID                string
	BulkLoadID        string
	LineNumber        int
	ProductID         string // identificadores tal como llegaron
	Barcode           string
	Name              string
	Quantity          decimal.Decimal
	ResolvedProductID string
	QuantityBefore    decimal.Decimal
	QuantityAfter     decimal.Decimal
	Status            string
	Error             string
	CreatedAt         time.Time
}
