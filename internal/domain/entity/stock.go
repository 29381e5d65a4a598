package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemRef identifica el ítem de un saldo: un producto o un insumo, nunca ambos.
type ItemRef struct {
	ProductID string
	InsumoID  string
}

// ProductItem construye la referencia de un producto.
func ProductItem(productID string) ItemRef { return ItemRef{ProductID: productID} }

// InsumoItem construye la referencia de un insumo.
func InsumoItem(insumoID string) ItemRef { return ItemRef{InsumoID: insumoID} }

// Valid indica si exactamente uno de los dos IDs está definido.
func (r ItemRef) Valid() bool {
	return (r.ProductID == "") != (r.InsumoID == "")
}

// IsProduct indica si la referencia apunta a un producto del catálogo.
func (r ItemRef) IsProduct() bool { return r.ProductID != "" }

// Key devuelve una clave estable para mapas ("p:<id>" o "i:<id>").
func (r ItemRef) Key() string {
	if r.ProductID != "" {
		return "p:" + r.ProductID
	}
	return "i:" + r.InsumoID
}

// Stock es el saldo de un ítem en una ubicación (sucursal o depósito).
// Existe a lo sumo una fila por (ítem, ubicación); se crea en el primer ajuste.
type Stock struct {
	ID          string
	Item        ItemRef
	LocationID  string
	Quantity    decimal.Decimal
	Version     int64 // se incrementa en cada ajuste (control optimista)
	LastUpdated time.Time
}

// Clone devuelve una copia independiente del saldo.
func (s *Stock) Clone() *Stock {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
