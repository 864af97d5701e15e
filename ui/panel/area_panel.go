package panel

import (
	"net/url"
	"strings"

	"gopivot/domain/pivot"
	"gopivot/ui/component"
	"gopivot/ui/templates/fragments"
)

// AreaChangeHandler is invoked by an AreaPanel after the user changed a field assignment
type AreaChangeHandler func(area pivot.Area, target *component.RenderTarget) error

// AreaPanel lists and edits the fields of one area
type AreaPanel struct {
	component.Base
	area     pivot.Area
	model    pivot.Model
	basePath string
	onChange AreaChangeHandler
}

// NewAreaPanel creates the configuration control for one area. AreaNone yields the list
// of unassigned fields.
func NewAreaPanel(parentMarkupID string, area pivot.Area, model pivot.Model, basePath string, onChange AreaChangeHandler) *AreaPanel {
	return &AreaPanel{
		Base:     component.NewBase(parentMarkupID, "area-"+strings.ToLower(area.String()), fragments.PivotArea),
		area:     area,
		model:    model,
		basePath: basePath,
		onChange: onChange,
	}
}

func (a *AreaPanel) Area() pivot.Area { return a.area }

// Title is the heading shown above the field list
func (a *AreaPanel) Title() string { return a.area.Title() }

// Fields returns the fields currently in this area
func (a *AreaPanel) Fields() []*pivot.Field {
	return a.model.Fields(a.area)
}

// Candidates returns the fields that can be moved into this area
func (a *AreaPanel) Candidates() []*pivot.Field {
	var out []*pivot.Field
	for _, f := range a.model.AllFields() {
		if f.Area != a.area {
			out = append(out, f)
		}
	}
	return out
}

// Aggregators lists the choices offered for DATA fields
func (a *AreaPanel) Aggregators() []pivot.Aggregator {
	return pivot.Aggregators()
}

// FilterValues lists the choices offered for a PAGE field
func (a *AreaPanel) FilterValues(name string) []string {
	values, err := a.model.DistinctValues(name)
	if err != nil {
		return nil
	}
	return values
}

// AddAction is the endpoint that moves a field into this area
func (a *AreaPanel) AddAction() string {
	return a.basePath + "/areas/" + strings.ToLower(a.area.String()) + "/fields"
}

// FieldAction is the endpoint for a per-field operation
func (a *AreaPanel) FieldAction(name, op string) string {
	return a.basePath + "/fields/" + url.PathEscape(name) + "/" + op
}

// Removable reports whether fields can be sent back to the unassigned list from here
func (a *AreaPanel) Removable() bool { return a.area != pivot.AreaNone }

func (a *AreaPanel) ShowsAggregators() bool { return a.area == pivot.AreaData }

func (a *AreaPanel) ShowsFilters() bool { return a.area == pivot.AreaPage }

// Orderable reports whether field order matters in this area
func (a *AreaPanel) Orderable() bool {
	return a.area == pivot.AreaRow || a.area == pivot.AreaColumn || a.area == pivot.AreaData
}

// AddField moves a field into this area, after the fields already there
func (a *AreaPanel) AddField(name string, target *component.RenderTarget) error {
	return a.MoveField(name, -1, target)
}

// MoveField places a field at index within this area, moving it from another area if needed
func (a *AreaPanel) MoveField(name string, index int, target *component.RenderTarget) error {
	var err error
	if a.area == pivot.AreaNone {
		err = a.model.UnassignField(name)
	} else {
		err = a.model.AssignField(name, a.area, index)
	}
	if err != nil {
		return err
	}
	return a.changed(target)
}

// RemoveField returns a field of this area to the unassigned list
func (a *AreaPanel) RemoveField(name string, target *component.RenderTarget) error {
	if err := a.model.UnassignField(name); err != nil {
		return err
	}
	return a.changed(target)
}

// SetAggregator changes how a DATA field is aggregated
func (a *AreaPanel) SetAggregator(name string, agg pivot.Aggregator, target *component.RenderTarget) error {
	if err := a.model.SetAggregator(name, agg); err != nil {
		return err
	}
	return a.changed(target)
}

// SetFilter selects the value a PAGE field filters on; empty clears the filter
func (a *AreaPanel) SetFilter(name, value string, target *component.RenderTarget) error {
	if err := a.model.SetFilter(name, value); err != nil {
		return err
	}
	return a.changed(target)
}

func (a *AreaPanel) changed(target *component.RenderTarget) error {
	if a.onChange == nil {
		return nil
	}
	return a.onChange(a.area, target)
}
