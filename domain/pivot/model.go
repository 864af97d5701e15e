package pivot

import (
	"fmt"
	"sort"
	"strings"
)

// Model owns the field-to-area assignment of a pivot table and computes its aggregation
type Model interface {
	DataSource() DataSource

	// AllFields returns every field in data source column order
	AllFields() []*Field
	// Fields returns the fields of an area ordered by their area index
	Fields(area Area) []*Field
	Field(name string) (*Field, bool)

	// AssignField moves a field into an area at the given position; a negative or
	// out-of-range index appends it
	AssignField(name string, area Area, index int) error
	UnassignField(name string) error
	SetAggregator(name string, agg Aggregator) error
	SetFilter(name, value string) error
	DistinctValues(name string) ([]string, error)

	Calculate() error
	Result() *Result

	ShowGrandTotalForRow() bool
	SetShowGrandTotalForRow(show bool)
	ShowGrandTotalForColumn() bool
	SetShowGrandTotalForColumn(show bool)

	Snapshot() State
	Restore(state State) error
}

// FieldState is the persisted placement of one field
type FieldState struct {
	Name        string     `json:"name"`
	Area        Area       `json:"area"`
	AreaIndex   int        `json:"area_index"`
	Aggregator  Aggregator `json:"aggregator"`
	FilterValue string     `json:"filter_value,omitempty"`
}

// State is the serializable configuration of a model
type State struct {
	Fields                  []FieldState `json:"fields"`
	ShowGrandTotalForRow    bool         `json:"show_grand_total_for_row"`
	ShowGrandTotalForColumn bool         `json:"show_grand_total_for_column"`
}

// DefaultModel is a group-by pivot model over a DataSource
type DefaultModel struct {
	dataSource DataSource
	fields     []*Field
	byName     map[string]*Field
	result     *Result

	showGrandTotalForRow    bool
	showGrandTotalForColumn bool
}

// NewDefaultModel creates a model with one unassigned field per data source column.
// Grand totals are shown by default.
func NewDefaultModel(ds DataSource) *DefaultModel {
	m := &DefaultModel{
		dataSource:              ds,
		byName:                  make(map[string]*Field),
		showGrandTotalForRow:    true,
		showGrandTotalForColumn: true,
	}
	if ds == nil {
		return m
	}
	for i := 0; i < ds.ColumnCount(); i++ {
		name := ds.ColumnName(i)
		t := ds.ColumnType(i)
		f := &Field{
			Index:      i,
			Name:       name,
			Title:      name,
			Type:       t,
			Area:       AreaNone,
			Aggregator: defaultAggregator(t),
		}
		m.fields = append(m.fields, f)
		m.byName[name] = f
	}
	return m
}

func (m *DefaultModel) DataSource() DataSource { return m.dataSource }

func (m *DefaultModel) AllFields() []*Field {
	return append([]*Field(nil), m.fields...)
}

func (m *DefaultModel) Fields(area Area) []*Field {
	var out []*Field
	for _, f := range m.fields {
		if f.Area == area {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AreaIndex < out[j].AreaIndex
	})
	return out
}

func (m *DefaultModel) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

func (m *DefaultModel) field(name string) (*Field, error) {
	f, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

func (m *DefaultModel) AssignField(name string, area Area, index int) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if !area.IsAssignable() {
		return m.UnassignField(name)
	}

	from := f.Area
	siblings := m.Fields(area)
	ordered := make([]*Field, 0, len(siblings)+1)
	for _, s := range siblings {
		if s != f {
			ordered = append(ordered, s)
		}
	}
	if index < 0 || index > len(ordered) {
		index = len(ordered)
	}
	ordered = append(ordered, nil)
	copy(ordered[index+1:], ordered[index:])
	ordered[index] = f

	f.Area = area
	if area != AreaPage {
		f.FilterValue = ""
	}
	for i, s := range ordered {
		s.AreaIndex = i
	}
	if from != area {
		m.renumber(from)
	}
	return nil
}

func (m *DefaultModel) UnassignField(name string) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	from := f.Area
	f.Area = AreaNone
	f.AreaIndex = 0
	f.FilterValue = ""
	m.renumber(from)
	return nil
}

func (m *DefaultModel) renumber(area Area) {
	if area == AreaNone {
		return
	}
	for i, f := range m.Fields(area) {
		f.AreaIndex = i
	}
}

func (m *DefaultModel) SetAggregator(name string, agg Aggregator) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if _, err := ParseAggregator(string(agg)); err != nil {
		return err
	}
	f.Aggregator = agg
	return nil
}

func (m *DefaultModel) SetFilter(name, value string) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if f.Area != AreaPage {
		return fmt.Errorf("field %q is not a page field", name)
	}
	f.FilterValue = value
	return nil
}

// DistinctValues returns the sorted distinct formatted values of a field
func (m *DefaultModel) DistinctValues(name string) ([]string, error) {
	f, err := m.field(name)
	if err != nil {
		return nil, err
	}
	if m.dataSource == nil {
		return nil, nil
	}
	seen := make(map[string]bool)
	var values []string
	for r := 0; r < m.dataSource.RowCount(); r++ {
		v := FormatValue(m.dataSource.ValueAt(r, f.Index))
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Slice(values, func(i, j int) bool { return lessValue(values[i], values[j]) })
	return values, nil
}

func (m *DefaultModel) ShowGrandTotalForRow() bool           { return m.showGrandTotalForRow }
func (m *DefaultModel) SetShowGrandTotalForRow(show bool)    { m.showGrandTotalForRow = show }
func (m *DefaultModel) ShowGrandTotalForColumn() bool        { return m.showGrandTotalForColumn }
func (m *DefaultModel) SetShowGrandTotalForColumn(show bool) { m.showGrandTotalForColumn = show }

// Result returns the last computed result, nil before the first Calculate
func (m *DefaultModel) Result() *Result { return m.result }

// Calculate groups the data source rows by the row and column fields and aggregates
// every DATA field per cell, per row, per column and overall.
func (m *DefaultModel) Calculate() error {
	if m.dataSource == nil {
		return fmt.Errorf("pivot model has no data source")
	}
	cols := m.dataSource.ColumnCount()
	for _, f := range m.fields {
		if f.IsAssigned() && f.Index >= cols {
			return fmt.Errorf("field %q refers to column %d, data source has %d", f.Name, f.Index, cols)
		}
	}

	rowFields := m.Fields(AreaRow)
	columnFields := m.Fields(AreaColumn)
	dataFields := m.Fields(AreaData)
	var filters []*Field
	for _, f := range m.Fields(AreaPage) {
		if f.FilterValue != "" {
			filters = append(filters, f)
		}
	}

	res := newResult(rowFields, columnFields, dataFields)
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)

	for r := 0; r < m.dataSource.RowCount(); r++ {
		if !m.matches(r, filters) {
			continue
		}
		rowKey := m.key(r, rowFields)
		colKey := m.key(r, columnFields)
		rk, ck := joinKey(rowKey), joinKey(colKey)
		if !rowSeen[rk] {
			rowSeen[rk] = true
			res.RowKeys = append(res.RowKeys, rowKey)
		}
		if !colSeen[ck] {
			colSeen[ck] = true
			res.ColumnKeys = append(res.ColumnKeys, colKey)
		}
		for d, f := range dataFields {
			v := m.dataSource.ValueAt(r, f.Index)
			res.acc(res.cells, cellKey{row: rk, col: ck, data: d}).add(v)
			res.acc(res.rowTotals, cellKey{row: rk, data: d}).add(v)
			res.acc(res.columnTotals, cellKey{col: ck, data: d}).add(v)
			res.acc(res.grandTotals, cellKey{data: d}).add(v)
		}
	}

	sortKeys(res.RowKeys)
	sortKeys(res.ColumnKeys)
	m.result = res
	return nil
}

func (m *DefaultModel) matches(row int, filters []*Field) bool {
	for _, f := range filters {
		if FormatValue(m.dataSource.ValueAt(row, f.Index)) != f.FilterValue {
			return false
		}
	}
	return true
}

func (m *DefaultModel) key(row int, fields []*Field) []string {
	key := make([]string, len(fields))
	for i, f := range fields {
		key[i] = FormatValue(m.dataSource.ValueAt(row, f.Index))
	}
	return key
}

func (m *DefaultModel) Snapshot() State {
	state := State{
		ShowGrandTotalForRow:    m.showGrandTotalForRow,
		ShowGrandTotalForColumn: m.showGrandTotalForColumn,
	}
	for _, f := range m.fields {
		state.Fields = append(state.Fields, FieldState{
			Name:        f.Name,
			Area:        f.Area,
			AreaIndex:   f.AreaIndex,
			Aggregator:  f.Aggregator,
			FilterValue: f.FilterValue,
		})
	}
	return state
}

// Restore applies a snapshot. Fields unknown to the data source are skipped. The snapshot is
// validated as a whole first; on error the model is left untouched.
func (m *DefaultModel) Restore(state State) error {
	type restore struct {
		field *Field
		state FieldState
	}
	pending := make([]restore, 0, len(state.Fields))
	for _, fs := range state.Fields {
		f, ok := m.byName[fs.Name]
		if !ok {
			continue
		}
		if fs.Area != AreaNone && !fs.Area.IsAssignable() {
			return fmt.Errorf("field %q has invalid area %q", fs.Name, fs.Area)
		}
		if fs.Aggregator != "" {
			agg, err := ParseAggregator(string(fs.Aggregator))
			if err != nil {
				return fmt.Errorf("field %q: %w", fs.Name, err)
			}
			fs.Aggregator = agg
		}
		pending = append(pending, restore{field: f, state: fs})
	}

	for _, r := range pending {
		r.field.Area = r.state.Area
		r.field.AreaIndex = r.state.AreaIndex
		if r.state.Aggregator != "" {
			r.field.Aggregator = r.state.Aggregator
		}
		r.field.FilterValue = r.state.FilterValue
	}
	for _, area := range Areas() {
		m.renumber(area)
	}
	m.showGrandTotalForRow = state.ShowGrandTotalForRow
	m.showGrandTotalForColumn = state.ShowGrandTotalForColumn
	return nil
}

const keySeparator = "\x1f"

func joinKey(key []string) string {
	return strings.Join(key, keySeparator)
}
