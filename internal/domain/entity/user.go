package entity

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User es el actor que ejecuta operaciones de stock. Solo interesa su rol.
type User struct {
	ID     string
	Name   string
	Role   string
	Status string
}
