package excel

import (
	"strconv"
	"strings"

	"gopivot/domain/pivot"
)

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, positional with Headers
}

// ToDataSource converts the raw strings into a pivot data source. Columns whose non-empty
// cells all parse as numbers become numeric, everything else stays text.
func (d *ExcelData) ToDataSource() (*pivot.ListDataSource, error) {
	ds := pivot.NewListDataSource(d.Headers...)
	numeric := make([]bool, len(d.Headers))
	for col := range d.Headers {
		numeric[col] = d.isNumericColumn(col)
		if numeric[col] {
			ds.SetColumnType(col, pivot.FieldNumeric)
		} else {
			ds.SetColumnType(col, pivot.FieldText)
		}
	}

	for _, row := range d.Rows {
		values := make([]interface{}, len(d.Headers))
		for col := range d.Headers {
			if col >= len(row) || row[col] == "" {
				continue
			}
			if numeric[col] {
				f, _ := strconv.ParseFloat(row[col], 64)
				values[col] = f
			} else {
				values[col] = row[col]
			}
		}
		if err := ds.AddRow(values...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (d *ExcelData) isNumericColumn(col int) bool {
	seen := false
	for _, row := range d.Rows {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		if _, err := strconv.ParseFloat(row[col], 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
