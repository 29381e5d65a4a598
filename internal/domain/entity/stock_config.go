package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockConfig es la política de umbrales de un producto en una sucursal (stock_config_sucursal).
type StockConfig struct {
	ID           string
	ProductID    string
	BranchID     string
	StockMax     decimal.Decimal // stock_maximo (techo)
	StockMin     decimal.Decimal // stock_minimo (piso)
	ReorderPoint decimal.Decimal // punto_reposicion
	CreatedBy    string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
