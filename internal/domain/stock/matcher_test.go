package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/stock"
)

func catalog(names ...string) []*entity.Product {
	out := make([]*entity.Product, len(names))
	for i, n := range names {
		out[i] = &entity.Product{ID: n, Name: n}
	}
	return out
}

func TestNormalize_QuitaTildesYMayusculas(t *testing.T) {
	assert.Equal(t, "difusor bambu", stock.Normalize("  Difusor   BAMBÚ "))
}

func TestTokens_SoloPalabrasDeTresLetras(t *testing.T) {
	assert.Equal(t, []string{"vela", "soja", "grande"}, stock.Tokens("Vela de soja 200g - GRANDE"))
}

func TestMatchByName_Estrategias(t *testing.T) {
	products := catalog("Difusor Bambú 100ml", "Difusor Bambú", "Vela Aromática Lavanda", "Jabón líquido")

	p, how := stock.MatchByName("difusor bambu", products)
	require.NotNil(t, p)
	assert.Equal(t, "Difusor Bambú", p.Name, "el exacto gana aunque haya otro candidato antes")
	assert.Equal(t, stock.MatchExactName, how)

	p, how = stock.MatchByName("lavanda vela", products)
	require.NotNil(t, p)
	assert.Equal(t, "Vela Aromática Lavanda", p.Name)
	assert.Equal(t, stock.MatchAllTokens, how)

	p, how = stock.MatchByName("n li", products)
	require.NotNil(t, p)
	assert.Equal(t, "Jabón líquido", p.Name)
	assert.Equal(t, stock.MatchSubstring, how)

	p, how = stock.MatchByName("Incienso", products)
	assert.Nil(t, p)
	assert.Equal(t, stock.MatchNone, how)

	p, _ = stock.MatchByName("   ", products)
	assert.Nil(t, p)
}

func TestSortByName_OrdenAlfabeticoSinMayusculas(t *testing.T) {
	names := []string{"Zeta", "alpha", "Beta"}
	stock.SortByName(names, language.Spanish, func(s string) string { return s }, nil)
	assert.Equal(t, []string{"alpha", "Beta", "Zeta"}, names)
}

func TestSortByName_Desempate(t *testing.T) {
	type row struct{ name, branch string }
	rows := []row{{"vela", "b2"}, {"Vela", "b1"}}
	stock.SortByName(rows, language.Spanish,
		func(r row) string { return r.name },
		func(a, b row) int {
			if a.branch < b.branch {
				return -1
			}
			if a.branch > b.branch {
				return 1
			}
			return 0
		})
	assert.Equal(t, "b1", rows[0].branch)
}
