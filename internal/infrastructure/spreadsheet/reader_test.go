package spreadsheet_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/infrastructure/spreadsheet"
)

func TestReadCSV_EncabezadosYAlias(t *testing.T) {
	in := "Nombre,Codigo_Barras,Cantidad\n" +
		"Difusor Bambú,,20\n" +
		",7701002,\"12,5\"\n" +
		",,\n"

	lines, err := spreadsheet.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 2, "la fila vacía se omite")

	assert.Equal(t, "Difusor Bambú", lines[0].Name)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "7701002", lines[1].Barcode)
	assert.True(t, lines[1].Quantity.Equal(decimal.RequireFromString("12.5")))
}

func TestReadCSV_PuntoYComa(t *testing.T) {
	in := "product_id;quantity\np-1;3\np-2;4.25\n"

	lines, err := spreadsheet.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "p-2", lines[1].ProductID)
	assert.True(t, lines[1].Quantity.Equal(decimal.RequireFromString("4.25")))
}

func TestReadCSV_Errores(t *testing.T) {
	cases := map[string]string{
		"sin cantidad":        "nombre\nVela\n",
		"sin identificadores": "cantidad\n3\n",
		"cantidad inválida":   "nombre,cantidad\nVela,tres\n",
		"vacía":               "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := spreadsheet.ReadCSV(strings.NewReader(in))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestReadCSV_ErrorIndicaFila(t *testing.T) {
	_, err := spreadsheet.ReadCSV(strings.NewReader("nombre,cantidad\nVela,1\nJabón,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fila 3")
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"producto_id", "nombre", "cantidad"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"p-difusor", "Difusor Bambú", 20}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"", "Vela Lavanda", 7.5}))
	path := filepath.Join(t.TempDir(), "conteo.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	lines, err := spreadsheet.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "p-difusor", lines[0].ProductID)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Vela Lavanda", lines[1].Name)
	assert.True(t, lines[1].Quantity.Equal(decimal.RequireFromString("7.5")))
}

func TestReadFile_ExtensionNoSoportada(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conteo.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := spreadsheet.ReadFile(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
