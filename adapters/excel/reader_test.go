package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopivot/domain/pivot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "region, amount ,note\nNorth,10,a\nSouth,2.5\n")

	data, err := NewDataReader(path, "").ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "amount", "note"}, data.Headers)
	assert.Equal(t, [][]string{{"North", "10", "a"}, {"South", "2.5", ""}}, data.Rows)

	ds, err := data.ToDataSource()
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, pivot.FieldNumeric, ds.ColumnType(1))
	assert.Equal(t, pivot.FieldText, ds.ColumnType(0))
	assert.Equal(t, 2.5, ds.ValueAt(1, 1))
	assert.Nil(t, ds.ValueAt(1, 2))
}

func TestReadRejectsMissingAndShortFiles(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), "").ReadData()
	assert.Error(t, err)

	_, err = NewDataReader(writeCSV(t, "only,header\n"), "").ReadData()
	assert.Error(t, err)

	_, err = NewDataReader(writeCSV(t, "a,a\n1,2\n"), "").ReadData()
	assert.Error(t, err, "duplicate headers")
}

func TestReadWorkbookSheet(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"region", "amount"},
		{"North", 10},
		{"South", 7},
	})

	data, err := NewDataReader(path, "Data").ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "amount"}, data.Headers)
	assert.Len(t, data.Rows, 2)

	_, err = NewDataReader(path, "Missing").ReadData()
	assert.Error(t, err)
}

func TestLoader(t *testing.T) {
	path := writeCSV(t, "region,amount\nNorth,10\nNorth,5\n")
	cfg := DefaultExcelConfig()
	cfg.FilePath = path
	cfg.Sheet = ""
	loader := NewLoader(cfg)

	assert.Equal(t, "sales.csv", loader.Name())
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RowCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportResult(t *testing.T) {
	ds := pivot.NewListDataSource("region", "product", "amount")
	require.NoError(t, ds.AddRow("North", "Tea", 10.0))
	require.NoError(t, ds.AddRow("North", "Coffee", 20.0))
	require.NoError(t, ds.AddRow("South", "Tea", 5.0))
	m := pivot.NewDefaultModel(ds)
	require.NoError(t, m.AssignField("region", pivot.AreaRow, -1))
	require.NoError(t, m.AssignField("product", pivot.AreaColumn, -1))
	require.NoError(t, m.AssignField("amount", pivot.AreaData, -1))
	require.NoError(t, m.Calculate())

	var buf bytes.Buffer
	require.NoError(t, ExportResult(&buf, m.Result(), ExportOptions{RowTotals: true, ColumnTotals: true}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(exportSheet, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "region", get("A1"))
	assert.Equal(t, "Coffee sum(amount)", get("B1"))
	assert.Equal(t, "Total sum(amount)", get("D1"))
	assert.Equal(t, "North", get("A2"))
	assert.Equal(t, "20", get("B2"))
	assert.Equal(t, "30", get("D2"))
	assert.Equal(t, "", get("B3"))
	assert.Equal(t, "Total", get("A4"))
	assert.Equal(t, "35", get("D4"))

	assert.Error(t, ExportResult(&buf, nil, ExportOptions{}))
}
