package pivot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesSource(t *testing.T) *ListDataSource {
	t.Helper()
	ds := NewListDataSource("region", "product", "year", "amount")
	rows := [][]interface{}{
		{"North", "Tea", 2023, 10.0},
		{"North", "Coffee", 2023, 20.0},
		{"North", "Tea", 2024, 5.0},
		{"South", "Tea", 2023, 7.0},
		{"South", "Coffee", 2024, 3.0},
		{"South", "Coffee", 2024, nil},
	}
	for _, r := range rows {
		require.NoError(t, ds.AddRow(r...))
	}
	return ds
}

func TestNewDefaultModelStartsUnassigned(t *testing.T) {
	m := NewDefaultModel(salesSource(t))

	assert.Len(t, m.AllFields(), 4)
	for _, area := range Areas() {
		assert.Empty(t, m.Fields(area), "area %s", area)
	}
	assert.True(t, m.ShowGrandTotalForRow())
	assert.True(t, m.ShowGrandTotalForColumn())

	amount, ok := m.Field("amount")
	require.True(t, ok)
	assert.Equal(t, FieldNumeric, amount.Type)
	assert.Equal(t, AggregatorSum, amount.Aggregator)

	region, _ := m.Field("region")
	assert.Equal(t, FieldText, region.Type)
	assert.Equal(t, AggregatorCount, region.Aggregator)
}

func TestAssignFieldOrdering(t *testing.T) {
	m := NewDefaultModel(salesSource(t))

	require.NoError(t, m.AssignField("region", AreaRow, -1))
	require.NoError(t, m.AssignField("product", AreaRow, -1))
	require.NoError(t, m.AssignField("year", AreaRow, 0))

	names := func(fields []*Field) []string {
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = f.Name
		}
		return out
	}
	assert.Equal(t, []string{"year", "region", "product"}, names(m.Fields(AreaRow)))

	// moving a field to another area renumbers the area it left
	require.NoError(t, m.AssignField("region", AreaColumn, -1))
	rows := m.Fields(AreaRow)
	assert.Equal(t, []string{"year", "product"}, names(rows))
	assert.Equal(t, 0, rows[0].AreaIndex)
	assert.Equal(t, 1, rows[1].AreaIndex)

	require.NoError(t, m.UnassignField("year"))
	assert.Equal(t, []string{"product"}, names(m.Fields(AreaRow)))

	assert.Error(t, m.AssignField("missing", AreaRow, -1))
}

func TestCalculateAggregates(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.AssignField("region", AreaRow, -1))
	require.NoError(t, m.AssignField("year", AreaColumn, -1))
	require.NoError(t, m.AssignField("amount", AreaData, -1))

	require.NoError(t, m.Calculate())
	res := m.Result()
	require.NotNil(t, res)

	assert.Equal(t, [][]string{{"North"}, {"South"}}, res.RowKeys)
	assert.Equal(t, [][]string{{"2023"}, {"2024"}}, res.ColumnKeys)

	v, ok := res.Value(0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 30.0, v)

	v, ok = res.Value(1, 1, 0)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	total, ok := res.RowTotal(0, 0)
	require.True(t, ok)
	assert.Equal(t, 35.0, total)

	total, ok = res.ColumnTotal(0, 0)
	require.True(t, ok)
	assert.Equal(t, 37.0, total)

	grand, ok := res.GrandTotal(0)
	require.True(t, ok)
	assert.Equal(t, 45.0, grand)
}

func TestCalculateAggregatorVariants(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.AssignField("region", AreaRow, -1))
	require.NoError(t, m.AssignField("amount", AreaData, -1))

	cases := []struct {
		agg  Aggregator
		want float64
	}{
		{AggregatorSum, 10},
		{AggregatorCount, 2},
		{AggregatorAverage, 5},
		{AggregatorMin, 3},
		{AggregatorMax, 7},
	}
	for _, tc := range cases {
		t.Run(string(tc.agg), func(t *testing.T) {
			require.NoError(t, m.SetAggregator("amount", tc.agg))
			require.NoError(t, m.Calculate())
			v, ok := m.Result().Value(1, 0, 0)
			require.True(t, ok)
			assert.InDelta(t, tc.want, v, 1e-9)
		})
	}

	assert.Error(t, m.SetAggregator("amount", Aggregator("median")))
}

func TestCalculateWithoutDataFields(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.Calculate())

	res := m.Result()
	require.NotNil(t, res)
	assert.Equal(t, [][]string{{}}, res.RowKeys)
	_, ok := res.Value(0, 0, 0)
	assert.False(t, ok)
}

func TestPageFilter(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.AssignField("product", AreaRow, -1))
	require.NoError(t, m.AssignField("amount", AreaData, -1))
	require.NoError(t, m.AssignField("region", AreaPage, -1))

	assert.Error(t, m.SetFilter("year", "2023"), "only page fields can filter")
	require.NoError(t, m.SetFilter("region", "South"))
	require.NoError(t, m.Calculate())

	res := m.Result()
	assert.Equal(t, [][]string{{"Coffee"}, {"Tea"}}, res.RowKeys)
	grand, ok := res.GrandTotal(0)
	require.True(t, ok)
	assert.Equal(t, 10.0, grand)

	// leaving the page area clears the filter
	require.NoError(t, m.AssignField("region", AreaColumn, -1))
	f, _ := m.Field("region")
	assert.Empty(t, f.FilterValue)
}

func TestDistinctValuesSortsNumerically(t *testing.T) {
	ds := NewListDataSource("n")
	for _, v := range []string{"10", "9", "100", "9"} {
		require.NoError(t, ds.AddRow(v))
	}
	m := NewDefaultModel(ds)

	values, err := m.DistinctValues("n")
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "100"}, values)
}

func TestSnapshotRestore(t *testing.T) {
	src := NewDefaultModel(salesSource(t))
	require.NoError(t, src.AssignField("region", AreaRow, -1))
	require.NoError(t, src.AssignField("amount", AreaData, -1))
	require.NoError(t, src.SetAggregator("amount", AggregatorMax))
	src.SetShowGrandTotalForColumn(false)

	dst := NewDefaultModel(salesSource(t))
	require.NoError(t, dst.Restore(src.Snapshot()))

	assert.Len(t, dst.Fields(AreaRow), 1)
	amount, _ := dst.Field("amount")
	assert.Equal(t, AreaData, amount.Area)
	assert.Equal(t, AggregatorMax, amount.Aggregator)
	assert.False(t, dst.ShowGrandTotalForColumn())
	assert.True(t, dst.ShowGrandTotalForRow())

	bad := State{Fields: []FieldState{{Name: "region", Area: Area("SIDEWAYS")}}}
	assert.Error(t, dst.Restore(bad))
}

func TestRestoreRejectedSnapshotLeavesModelUntouched(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.AssignField("year", AreaColumn, -1))

	bad := State{
		ShowGrandTotalForRow: false,
		Fields: []FieldState{
			{Name: "region", Area: AreaRow},
			{Name: "amount", Area: AreaData, Aggregator: AggregatorSum},
			{Name: "product", Area: Area("BOGUS")},
		},
	}
	require.Error(t, m.Restore(bad))

	region, _ := m.Field("region")
	amount, _ := m.Field("amount")
	year, _ := m.Field("year")
	assert.False(t, region.IsAssigned())
	assert.False(t, amount.IsAssigned())
	assert.Equal(t, AreaColumn, year.Area)
	assert.True(t, m.ShowGrandTotalForRow())

	unknownAgg := State{Fields: []FieldState{
		{Name: "region", Area: AreaRow},
		{Name: "amount", Area: AreaData, Aggregator: Aggregator("median")},
	}}
	require.Error(t, m.Restore(unknownAgg))
	assert.False(t, region.IsAssigned())
}

func TestCalculateRejectsShrunkDataSource(t *testing.T) {
	m := NewDefaultModel(salesSource(t))
	require.NoError(t, m.AssignField("amount", AreaData, -1))
	m.dataSource = NewListDataSource("region")

	assert.Error(t, m.Calculate())
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		input    string
		expected Area
		hasError bool
	}{
		{"row", AreaRow, false},
		{"Columns", AreaColumn, false},
		{"DATA", AreaData, false},
		{"filter", AreaPage, false},
		{"", AreaNone, false},
		{"diagonal", AreaNone, true},
	}
	for _, tc := range tests {
		got, err := ParseArea(tc.input)
		if tc.hasError {
			assert.Error(t, err, tc.input)
			continue
		}
		assert.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, got, tc.input)
	}
}
