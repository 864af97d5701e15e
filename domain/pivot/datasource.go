package pivot

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldType classifies a data source column
type FieldType string

const (
	FieldNumeric FieldType = "numeric"
	FieldText    FieldType = "text"
)

// DataSource supplies the raw tabular data a model aggregates over
type DataSource interface {
	RowCount() int
	ColumnCount() int
	ColumnName(col int) string
	ColumnType(col int) FieldType
	ValueAt(row, col int) interface{}
}

// ListDataSource is an in-memory, column-named table.
// Column types are inferred as rows are added, so reads never mutate it.
type ListDataSource struct {
	names []string
	types []FieldType
	rows  [][]interface{}

	// per column: a non-empty value was added / a non-numeric value was added
	seen []bool
	text []bool
}

// NewListDataSource creates a table with the given column names. Column types are inferred
// from the rows added later unless set explicitly with SetColumnType.
func NewListDataSource(names ...string) *ListDataSource {
	return &ListDataSource{
		names: append([]string(nil), names...),
		types: make([]FieldType, len(names)),
		seen:  make([]bool, len(names)),
		text:  make([]bool, len(names)),
	}
}

// AddRow appends a row. Short rows are padded with nil, long rows are rejected.
func (ds *ListDataSource) AddRow(values ...interface{}) error {
	if len(values) > len(ds.names) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(ds.names))
	}
	row := make([]interface{}, len(ds.names))
	copy(row, values)
	ds.rows = append(ds.rows, row)
	for col, v := range row {
		ds.observe(col, v)
	}
	return nil
}

func (ds *ListDataSource) observe(col int, v interface{}) {
	if ds.text[col] || v == nil {
		return
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return
	}
	ds.seen[col] = true
	if _, ok := ToFloat(v); !ok {
		ds.text[col] = true
	}
}

// SetColumnType overrides the inferred type of a column
func (ds *ListDataSource) SetColumnType(col int, t FieldType) {
	if col >= 0 && col < len(ds.types) {
		ds.types[col] = t
	}
}

func (ds *ListDataSource) RowCount() int    { return len(ds.rows) }
func (ds *ListDataSource) ColumnCount() int { return len(ds.names) }

func (ds *ListDataSource) ColumnName(col int) string {
	if col < 0 || col >= len(ds.names) {
		return ""
	}
	return ds.names[col]
}

// ColumnType returns the explicit type if one was set, otherwise numeric when every
// non-empty value in the column parses as a number.
func (ds *ListDataSource) ColumnType(col int) FieldType {
	if col < 0 || col >= len(ds.types) {
		return FieldText
	}
	if ds.types[col] != "" {
		return ds.types[col]
	}
	if !ds.seen[col] || ds.text[col] {
		return FieldText
	}
	return FieldNumeric
}

func (ds *ListDataSource) ValueAt(row, col int) interface{} {
	if row < 0 || row >= len(ds.rows) || col < 0 || col >= len(ds.names) {
		return nil
	}
	return ds.rows[row][col]
}

// ToFloat converts numeric values and numeric strings to float64
func ToFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case []byte:
		return ToFloat(string(t))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatValue renders a raw value as a grouping key
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
