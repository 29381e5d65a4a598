package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de alerta de stock.
const (
	AlertKindCritical = "critico"
	AlertKindLow      = "bajo"
	AlertKindExcess   = "exceso"
	AlertKindReorder  = "reposicion" // reservado; el generador no lo emite
)

// StockAlert es una alerta por (producto, sucursal, tipo). A lo sumo una activa por tipo.
type StockAlert struct {
	ID        string
	ProductID string
	BranchID  string
	Kind      string
	Message   string
	Quantity  decimal.Decimal // cantidad que disparó la alerta
	Threshold decimal.Decimal // umbral de referencia
	Active    bool
	ViewedBy  string
	ViewedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
