package entity

import "github.com/shopspring/decimal"

// Product es la vista del catálogo que necesita el motor de stock.
type Product struct {
	ID              string
	Name            string
	Barcode         string
	CategoryID      string
	DefaultMinStock decimal.Decimal // stock mínimo sugerido por el catálogo
	Active          bool
}
