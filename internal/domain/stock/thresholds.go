package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain"
)

// Reglas de validación de umbrales (se devuelven en ConfigRuleError.Rule).
const (
	RuleMinNonNegative  = "stock_minimo >= 0"
	RuleMinNotAboveMax  = "stock_minimo <= stock_maximo"
	RuleReorderNotAbove = "punto_reposicion <= stock_maximo"
)

var (
	one         = decimal.NewFromInt(1)
	three       = decimal.NewFromInt(3)
	five        = decimal.NewFromInt(5)
	ten         = decimal.NewFromInt(10)
	oneAndAHalf = decimal.NewFromFloat(1.5)
)

// DefaultThresholds deriva umbrales para un par sin configuración:
//
//	minimo     = max(minimoCatalogo, 1)
//	maximo     = max(3×cantidad, 5×minimo, 10)
//	reposicion = ceil(1.5×minimo)
func DefaultThresholds(catalogMin, quantity decimal.Decimal) Thresholds {
	minQty := decimal.Max(catalogMin, one)
	maxQty := decimal.Max(quantity.Mul(three), minQty.Mul(five), ten)
	return Thresholds{
		Max:          maxQty,
		Min:          minQty,
		ReorderPoint: minQty.Mul(oneAndAHalf).Ceil(),
	}
}

// ValidateThresholds verifica 0 ≤ minimo ≤ maximo y reposicion ≤ maximo.
func ValidateThresholds(t Thresholds) error {
	if t.Min.IsNegative() {
		return &domain.ConfigRuleError{Rule: RuleMinNonNegative}
	}
	if t.Min.GreaterThan(t.Max) {
		return &domain.ConfigRuleError{Rule: RuleMinNotAboveMax}
	}
	if t.ReorderPoint.GreaterThan(t.Max) {
		return &domain.ConfigRuleError{Rule: RuleReorderNotAbove}
	}
	return nil
}
