// Package pivot holds the pivot table model: field-to-area assignment, data sources and aggregation
package pivot

import (
	"fmt"
	"strings"
)

// Area is the role a field plays in the pivot table
type Area string

const (
	AreaNone   Area = ""
	AreaRow    Area = "ROW"
	AreaColumn Area = "COLUMN"
	AreaData   Area = "DATA"
	AreaPage   Area = "PAGE"
)

// Areas returns the assignable areas in display order
func Areas() []Area {
	return []Area{AreaRow, AreaColumn, AreaData, AreaPage}
}

// String returns the area name, "NONE" for unassigned
func (a Area) String() string {
	if a == AreaNone {
		return "NONE"
	}
	return string(a)
}

// Title returns a human readable label for the area
func (a Area) Title() string {
	switch a {
	case AreaRow:
		return "Rows"
	case AreaColumn:
		return "Columns"
	case AreaData:
		return "Values"
	case AreaPage:
		return "Filters"
	default:
		return "Fields"
	}
}

// IsAssignable reports whether fields can be placed in this area
func (a Area) IsAssignable() bool {
	switch a {
	case AreaRow, AreaColumn, AreaData, AreaPage:
		return true
	}
	return false
}

// ParseArea parses a case-insensitive area name
func ParseArea(s string) (Area, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ROW", "ROWS":
		return AreaRow, nil
	case "COLUMN", "COLUMNS":
		return AreaColumn, nil
	case "DATA", "VALUES":
		return AreaData, nil
	case "PAGE", "FILTER", "FILTERS":
		return AreaPage, nil
	case "NONE", "":
		return AreaNone, nil
	}
	return AreaNone, fmt.Errorf("unknown area %q", s)
}
