package pivot

// Field is a data source column together with its placement in the pivot table
type Field struct {
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Type        FieldType  `json:"type"`
	Area        Area       `json:"area"`
	AreaIndex   int        `json:"area_index"`
	Aggregator  Aggregator `json:"aggregator"`
	FilterValue string     `json:"filter_value,omitempty"`
}

// IsAssigned reports whether the field sits in one of the pivot areas
func (f *Field) IsAssigned() bool {
	return f.Area != AreaNone
}

// IsNumeric reports whether the underlying column holds numbers
func (f *Field) IsNumeric() bool {
	return f.Type == FieldNumeric
}

func defaultAggregator(t FieldType) Aggregator {
	if t == FieldNumeric {
		return AggregatorSum
	}
	return AggregatorCount
}
