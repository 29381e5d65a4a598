package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// ClassifiableEntry es un par (producto, sucursal) listo para clasificar: o bien tiene
// configuración explícita, o bien umbrales inferidos desde su saldo. Ambas variantes pasan
// por el mismo Classify.
type ClassifiableEntry struct {
	ProductID  string
	BranchID   string
	Quantity   decimal.Decimal
	thresholds Thresholds
	explicit   bool
}

// Configured crea la variante con configuración explícita.
func Configured(cfg *entity.StockConfig, quantity decimal.Decimal) ClassifiableEntry {
	return ClassifiableEntry{
		ProductID: cfg.ProductID,
		BranchID:  cfg.BranchID,
		Quantity:  quantity,
		thresholds: Thresholds{
			Max:          cfg.StockMax,
			Min:          cfg.StockMin,
			ReorderPoint: cfg.ReorderPoint,
		},
		explicit: true,
	}
}

// Inferred crea la variante con umbrales derivados (misma fórmula que el autoaprovisionamiento).
func Inferred(productID, branchID string, quantity, catalogMin decimal.Decimal) ClassifiableEntry {
	return ClassifiableEntry{
		ProductID:  productID,
		BranchID:   branchID,
		Quantity:   quantity,
		thresholds: DefaultThresholds(catalogMin, quantity),
	}
}

// HasExplicitConfig distingue filas configuradas de filas inferidas.
func (e ClassifiableEntry) HasExplicitConfig() bool { return e.explicit }

// Thresholds devuelve los umbrales efectivos.
func (e ClassifiableEntry) Thresholds() Thresholds { return e.thresholds }

// Classify aplica Classify a la entrada.
func (e ClassifiableEntry) Classify() Classification {
	return Classify(e.Quantity, e.thresholds)
}
