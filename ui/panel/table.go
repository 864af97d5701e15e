package panel

import (
	"strings"

	"gopivot/domain/pivot"
	"gopivot/ui/component"
	"gopivot/ui/templates/fragments"

	"github.com/google/uuid"
)

// Table renders one computed result. It is never updated in place: every successful
// compute builds a new Table that replaces the previous one.
type Table struct {
	component.Base
	Instance uuid.UUID
	model    pivot.Model
	result   *pivot.Result
}

// Cell is one rendered value
type Cell struct {
	Text  string
	Empty bool
}

// Row is one rendered body row
type Row struct {
	Labels []string
	Cells  []Cell
	Total  []Cell
}

// NewTable creates a table view over the model's current result
func NewTable(parentMarkupID, id string, model pivot.Model) *Table {
	return &Table{
		Base:     component.NewBase(parentMarkupID, id, fragments.PivotTable),
		Instance: uuid.New(),
		model:    model,
		result:   model.Result(),
	}
}

// Result is the result this view was built from
func (t *Table) Result() *pivot.Result { return t.result }

func (t *Table) HasResult() bool { return !t.result.IsEmpty() }

// ShowRowTotals adds a total column at the end of each row
func (t *Table) ShowRowTotals() bool { return t.model.ShowGrandTotalForRow() }

// ShowColumnTotals adds a total row at the bottom of the table
func (t *Table) ShowColumnTotals() bool { return t.model.ShowGrandTotalForColumn() }

// RowHeaders returns the titles of the row fields
func (t *Table) RowHeaders() []string {
	if t.result == nil {
		return nil
	}
	out := make([]string, len(t.result.RowFields))
	for i, f := range t.result.RowFields {
		out[i] = f.Title
	}
	return out
}

// RowHeaderSpan is the number of label columns, at least one
func (t *Table) RowHeaderSpan() int {
	if n := len(t.RowHeaders()); n > 0 {
		return n
	}
	return 1
}

// ColumnLabels returns one label per column key
func (t *Table) ColumnLabels() []string {
	if t.result == nil {
		return nil
	}
	out := make([]string, len(t.result.ColumnKeys))
	for i, key := range t.result.ColumnKeys {
		out[i] = strings.Join(key, " / ")
	}
	return out
}

// DataTitles returns "aggregator(field)" for each data field
func (t *Table) DataTitles() []string {
	if t.result == nil {
		return nil
	}
	out := make([]string, len(t.result.DataFields))
	for i, f := range t.result.DataFields {
		out[i] = string(f.Aggregator) + "(" + f.Title + ")"
	}
	return out
}

// DataSpan is the number of value columns under each column label
func (t *Table) DataSpan() int {
	if t.result == nil || len(t.result.DataFields) == 0 {
		return 1
	}
	return len(t.result.DataFields)
}

// Rows returns the body rows
func (t *Table) Rows() []Row {
	if t.result == nil {
		return nil
	}
	res := t.result
	rows := make([]Row, len(res.RowKeys))
	for i, key := range res.RowKeys {
		row := Row{Labels: key}
		for j := range res.ColumnKeys {
			for d := range res.DataFields {
				row.Cells = append(row.Cells, cell(res.Value(i, j, d)))
			}
		}
		for d := range res.DataFields {
			row.Total = append(row.Total, cell(res.RowTotal(i, d)))
		}
		rows[i] = row
	}
	return rows
}

// ColumnTotals returns the bottom total row, ending with the grand totals
func (t *Table) ColumnTotals() []Cell {
	if t.result == nil {
		return nil
	}
	res := t.result
	var out []Cell
	for j := range res.ColumnKeys {
		for d := range res.DataFields {
			out = append(out, cell(res.ColumnTotal(j, d)))
		}
	}
	return out
}

// GrandTotals returns the overall aggregate of each data field
func (t *Table) GrandTotals() []Cell {
	if t.result == nil {
		return nil
	}
	out := make([]Cell, len(t.result.DataFields))
	for d := range t.result.DataFields {
		out[d] = cell(t.result.GrandTotal(d))
	}
	return out
}

func cell(v float64, ok bool) Cell {
	if !ok {
		return Cell{Empty: true}
	}
	return Cell{Text: pivot.FormatNumber(v)}
}
