// Package spreadsheet convierte planillas de conteo (XLSX o CSV) en líneas de carga masiva.
//
// La primera fila es el encabezado. Columnas reconocidas (sin distinguir mayúsculas):
//
//	producto_id | product_id
//	codigo_barras | barcode
//	nombre | name
//	cantidad | quantity
//
// Se requiere "cantidad" y al menos una columna identificadora. Las filas vacías se omiten.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain"
)

const (
	colProductID = "producto_id"
	colBarcode   = "codigo_barras"
	colName      = "nombre"
	colQuantity  = "cantidad"
)

var headerAliases = map[string]string{
	"producto_id":   colProductID,
	"product_id":    colProductID,
	"codigo_barras": colBarcode,
	"código_barras": colBarcode,
	"barcode":       colBarcode,
	"nombre":        colName,
	"name":          colName,
	"cantidad":      colQuantity,
	"quantity":      colQuantity,
}

// ReadFile elige el lector por extensión (.xlsx o .csv).
func ReadFile(path string) ([]inventory.BulkLoadLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, filepath.Ext(path))
}

// Read lee desde r según la extensión indicada (".xlsx" o ".csv").
func Read(r io.Reader, ext string) ([]inventory.BulkLoadLine, error) {
	switch strings.ToLower(ext) {
	case ".xlsx":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado (xlsx o csv)", domain.ErrInvalidInput, ext)
	}
}

// ReadXLSX lee la primera hoja del libro.
func ReadXLSX(r io.Reader) ([]inventory.BulkLoadLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx ilegible: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: el libro no tiene hojas", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheets[0], err)
	}
	return parseRows(rows)
}

// ReadCSV lee un CSV separado por comas o punto y coma.
func ReadCSV(r io.Reader) ([]inventory.BulkLoadLine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if firstLine, _, _ := strings.Cut(string(data), "\n"); strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv ilegible: %v", domain.ErrInvalidInput, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]inventory.BulkLoadLine, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: planilla vacía", domain.ErrInvalidInput)
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.BulkLoadLine, 0, len(rows)-1)
	var errs []error
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rowNumber := i + 2 // 1-based y contando el encabezado
		line := inventory.BulkLoadLine{
			ProductID: cell(row, index, colProductID),
			Barcode:   cell(row, index, colBarcode),
			Name:      cell(row, index, colName),
		}
		qty, err := parseQuantity(cell(row, index, colQuantity))
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", rowNumber, err))
			continue
		}
		line.Quantity = qty
		lines = append(lines, line)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return lines, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		key = strings.ReplaceAll(key, " ", "_")
		if col, ok := headerAliases[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	if _, ok := index[colQuantity]; !ok {
		return nil, fmt.Errorf("%w: falta la columna %q", domain.ErrInvalidInput, colQuantity)
	}
	_, hasID := index[colProductID]
	_, hasBarcode := index[colBarcode]
	_, hasName := index[colName]
	if !hasID && !hasBarcode && !hasName {
		return nil, fmt.Errorf("%w: se requiere %s, %s o %s", domain.ErrInvalidInput, colProductID, colBarcode, colName)
	}
	return index, nil
}

func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseQuantity acepta coma decimal ("12,5") si no hay punto.
func parseQuantity(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errors.New("cantidad vacía")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cantidad %q inválida", s)
	}
	return q, nil
}
