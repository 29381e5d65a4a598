package entity

// Tipos de sucursal.
const (
	BranchTypeStore     = "sucursal"
	BranchTypeWarehouse = "deposito"
)

// Branch representa una sucursal o depósito donde se guarda stock.
type Branch struct {
	ID   string
	Name string
	Type string
}
