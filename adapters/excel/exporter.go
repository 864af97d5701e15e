package excel

import (
	"fmt"
	"io"
	"strings"

	"gopivot/domain/pivot"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Pivot"

// ExportOptions controls which totals are written
type ExportOptions struct {
	RowTotals    bool
	ColumnTotals bool
}

// ExportResult writes a computed pivot result as a single-sheet workbook
func ExportResult(w io.Writer, res *pivot.Result, opts ExportOptions) error {
	if res == nil {
		return fmt.Errorf("no pivot result to export")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	labelCols := len(res.RowFields)
	if labelCols == 0 {
		labelCols = 1
	}

	// header row
	header := make([]interface{}, 0, labelCols+len(res.ColumnKeys)*len(res.DataFields))
	for i := 0; i < labelCols; i++ {
		if i < len(res.RowFields) {
			header = append(header, res.RowFields[i].Title)
		} else {
			header = append(header, "")
		}
	}
	for _, key := range res.ColumnKeys {
		for _, d := range res.DataFields {
			header = append(header, columnTitle(key, d))
		}
	}
	if opts.RowTotals {
		for _, d := range res.DataFields {
			header = append(header, columnTitle([]string{"Total"}, d))
		}
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	if err := styleRow(f, 1, len(header), bold); err != nil {
		return err
	}

	rowNum := 2
	for i, key := range res.RowKeys {
		row := make([]interface{}, 0, len(header))
		for c := 0; c < labelCols; c++ {
			if c < len(key) {
				row = append(row, key[c])
			} else {
				row = append(row, "")
			}
		}
		for j := range res.ColumnKeys {
			for d := range res.DataFields {
				row = append(row, exportValue(res.Value(i, j, d)))
			}
		}
		if opts.RowTotals {
			for d := range res.DataFields {
				row = append(row, exportValue(res.RowTotal(i, d)))
			}
		}
		if err := setRow(f, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}

	if opts.ColumnTotals {
		row := make([]interface{}, 0, len(header))
		row = append(row, "Total")
		for c := 1; c < labelCols; c++ {
			row = append(row, "")
		}
		for j := range res.ColumnKeys {
			for d := range res.DataFields {
				row = append(row, exportValue(res.ColumnTotal(j, d)))
			}
		}
		if opts.RowTotals {
			for d := range res.DataFields {
				row = append(row, exportValue(res.GrandTotal(d)))
			}
		}
		if err := setRow(f, rowNum, row); err != nil {
			return err
		}
		if err := styleRow(f, rowNum, len(row), bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func columnTitle(key []string, d pivot.Field) string {
	label := strings.Join(key, " / ")
	title := string(d.Aggregator) + "(" + d.Title + ")"
	if label == "" {
		return title
	}
	return label + " " + title
}

func exportValue(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func styleRow(f *excelize.File, row, width, style int) error {
	if width == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(exportSheet, first, last, style)
}
