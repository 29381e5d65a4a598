// Package stock contiene los servicios de dominio puros del control de stock:
// clasificación de salud, umbrales derivados, validación y resolución de nombres.
package stock

import (
	"github.com/shopspring/decimal"
)

// State es el estado de salud de un saldo frente a sus umbrales.
type State string

const (
	StateCritical State = "critico"
	StateLow      State = "bajo"
	StateExcess   State = "exceso"
	StateNormal   State = "normal"
)

// Acciones recomendadas por estado.
const (
	ActionUrgentReorder = "reponer_urgente"
	ActionReorder       = "reponer"
	ActionRedistribute  = "redistribuir_excedente"
	ActionNone          = "sin_accion"
)

var hundred = decimal.NewFromInt(100)

// Thresholds son los tres umbrales de una configuración por sucursal.
type Thresholds struct {
	Max          decimal.Decimal
	Min          decimal.Decimal
	ReorderPoint decimal.Decimal
}

// Classification es el resultado de Classify.
type Classification struct {
	Quantity          decimal.Decimal
	Diff              decimal.Decimal // stock_maximo − cantidad
	UtilizationPct    decimal.Decimal
	State             State
	NeedsReorder      bool
	CanLoadMore       bool
	SuggestedQty      decimal.Decimal
	HasExcess         bool
	ExcessAmount      decimal.Decimal
	RecommendedAction string
}

// Classify clasifica una cantidad contra sus umbrales. El primer estado que aplica gana:
// cantidad ≤ mínimo → critico; ≤ punto de reposición → bajo; > máximo → exceso; si no, normal.
func Classify(quantity decimal.Decimal, t Thresholds) Classification {
	c := Classification{
		Quantity:     quantity,
		Diff:         t.Max.Sub(quantity),
		NeedsReorder: quantity.LessThanOrEqual(t.ReorderPoint),
		CanLoadMore:  quantity.LessThan(t.Max),
		SuggestedQty: decimal.Max(decimal.Zero, t.Max.Sub(quantity)),
		HasExcess:    quantity.GreaterThan(t.Max),
		ExcessAmount: decimal.Max(decimal.Zero, quantity.Sub(t.Max)),
	}
	if t.Max.IsZero() {
		c.UtilizationPct = decimal.Zero
	} else {
		c.UtilizationPct = quantity.Mul(hundred).Div(t.Max).Round(0)
	}

	switch {
	case quantity.LessThanOrEqual(t.Min):
		c.State = StateCritical
		c.RecommendedAction = ActionUrgentReorder
	case quantity.LessThanOrEqual(t.ReorderPoint):
		c.State = StateLow
		c.RecommendedAction = ActionReorder
	case quantity.GreaterThan(t.Max):
		c.State = StateExcess
		c.RecommendedAction = ActionRedistribute
	default:
		c.State = StateNormal
		c.RecommendedAction = ActionNone
	}
	return c
}
