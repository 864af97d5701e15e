package pivot

import (
	"sort"
	"strconv"
)

type cellKey struct {
	row  string
	col  string
	data int
}

// Result is the outcome of one Calculate: the distinct row and column keys and the
// aggregated values of every DATA field
type Result struct {
	RowFields    []Field    `json:"row_fields"`
	ColumnFields []Field    `json:"column_fields"`
	DataFields   []Field    `json:"data_fields"`
	RowKeys      [][]string `json:"row_keys"`
	ColumnKeys   [][]string `json:"column_keys"`

	cells        map[cellKey]*accumulator
	rowTotals    map[cellKey]*accumulator
	columnTotals map[cellKey]*accumulator
	grandTotals  map[cellKey]*accumulator
}

func newResult(rows, cols, data []*Field) *Result {
	return &Result{
		RowFields:    copyFields(rows),
		ColumnFields: copyFields(cols),
		DataFields:   copyFields(data),
		cells:        make(map[cellKey]*accumulator),
		rowTotals:    make(map[cellKey]*accumulator),
		columnTotals: make(map[cellKey]*accumulator),
		grandTotals:  make(map[cellKey]*accumulator),
	}
}

func copyFields(fields []*Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = *f
	}
	return out
}

func (r *Result) acc(m map[cellKey]*accumulator, k cellKey) *accumulator {
	a, ok := m[k]
	if !ok {
		a = &accumulator{}
		m[k] = a
	}
	return a
}

func (r *Result) lookup(m map[cellKey]*accumulator, k cellKey) (float64, bool) {
	if k.data < 0 || k.data >= len(r.DataFields) {
		return 0, false
	}
	a, ok := m[k]
	if !ok {
		return 0, false
	}
	return a.value(r.DataFields[k.data].Aggregator)
}

// IsEmpty reports whether no row contributed to the result
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.RowKeys) == 0
}

// Value returns the aggregate at row key i, column key j for data field d
func (r *Result) Value(i, j, d int) (float64, bool) {
	if i < 0 || i >= len(r.RowKeys) || j < 0 || j >= len(r.ColumnKeys) {
		return 0, false
	}
	return r.lookup(r.cells, cellKey{row: joinKey(r.RowKeys[i]), col: joinKey(r.ColumnKeys[j]), data: d})
}

// RowTotal aggregates data field d over every column of row key i
func (r *Result) RowTotal(i, d int) (float64, bool) {
	if i < 0 || i >= len(r.RowKeys) {
		return 0, false
	}
	return r.lookup(r.rowTotals, cellKey{row: joinKey(r.RowKeys[i]), data: d})
}

// ColumnTotal aggregates data field d over every row of column key j
func (r *Result) ColumnTotal(j, d int) (float64, bool) {
	if j < 0 || j >= len(r.ColumnKeys) {
		return 0, false
	}
	return r.lookup(r.columnTotals, cellKey{col: joinKey(r.ColumnKeys[j]), data: d})
}

// GrandTotal aggregates data field d over the whole filtered data source
func (r *Result) GrandTotal(d int) (float64, bool) {
	return r.lookup(r.grandTotals, cellKey{data: d})
}

// FormatNumber renders an aggregate for display
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sortKeys(keys [][]string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return lessValue(a[k], b[k])
			}
		}
		return len(a) < len(b)
	})
}

// lessValue orders numerically when both values are numbers, lexically otherwise
func lessValue(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
