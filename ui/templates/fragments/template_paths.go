// Package fragments provides template path constants for organized template management
package fragments

import "strings"

// Template path constants for organized fragment access
const (
	// Page templates
	Index = "index.html"
	Error = "error.html"

	// Pivot panel templates
	PivotPanel    = "pivot/panel.html"
	PivotAreas    = "pivot/areas.html"
	PivotArea     = "pivot/area.html"
	PivotTable    = "pivot/table.html"
	PivotCheckBox = "pivot/checkbox.html"
	PivotCompute  = "pivot/compute.html"
)

// AllTemplates returns every known template path
func AllTemplates() []string {
	return []string{
		Index,
		Error,
		PivotPanel,
		PivotAreas,
		PivotArea,
		PivotTable,
		PivotCheckBox,
		PivotCompute,
	}
}

// IsPivotTemplate reports whether the template belongs to the pivot panel
func IsPivotTemplate(path string) bool {
	return strings.HasPrefix(path, "pivot/")
}
