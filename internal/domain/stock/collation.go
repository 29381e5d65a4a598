package stock

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameComparer ordena nombres de producto según el idioma, sin distinguir mayúsculas.
// No es seguro para uso concurrente: crear uno por ordenamiento.
type NameComparer struct {
	col *collate.Collator
}

// NewNameComparer construye el comparador para el idioma indicado.
func NewNameComparer(tag language.Tag) *NameComparer {
	return &NameComparer{col: collate.New(tag, collate.IgnoreCase)}
}

// Compare devuelve -1, 0 o 1.
func (c *NameComparer) Compare(a, b string) int {
	return c.col.CompareString(a, b)
}

// SortByName ordena items por nombre; tie desempata cuando los nombres son equivalentes.
func SortByName[T any](items []T, tag language.Tag, name func(T) string, tie func(a, b T) int) {
	cmp := NewNameComparer(tag)
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(name(a), name(b)); c != 0 {
			return c
		}
		if tie != nil {
			return tie(a, b)
		}
		return 0
	})
}
