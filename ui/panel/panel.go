// Package panel implements the pivot panel: the area configuration controls, grand total and
// auto-compute toggles, the compute trigger, and the result table they drive.
package panel

import (
	"fmt"
	"log"

	"gopivot/domain/pivot"
	"gopivot/internal/session"
	"gopivot/ui/component"
	"gopivot/ui/templates/fragments"
)

const tableID = "pivotTable"

// Options customizes panel construction
type Options struct {
	// ModelFactory builds the model bound to the data source. Defaults to pivot.NewDefaultModel.
	ModelFactory func(ds pivot.DataSource) pivot.Model
	// BasePath prefixes the action URLs of the panel's controls. Defaults to "/pivot".
	BasePath string
}

// Panel binds a pivot model to its controls and result table
type Panel struct {
	component.Container

	session     *session.Context
	model       pivot.Model
	basePath    string
	autoCompute bool

	areas       *component.Container
	areaPanels  []*AreaPanel
	table       *Table
	computeLink *ComputeLink

	showGrandTotalForColumn *CheckBox
	showGrandTotalForRow    *CheckBox
	autoComputeCheckBox     *CheckBox
}

// NewPanel builds a model over the data source, runs an initial calculation and registers
// the panel with the session. The result table starts hidden.
func NewPanel(sess *session.Context, id string, ds pivot.DataSource, opts Options) (*Panel, error) {
	if opts.ModelFactory == nil {
		opts.ModelFactory = func(ds pivot.DataSource) pivot.Model { return pivot.NewDefaultModel(ds) }
	}
	if opts.BasePath == "" {
		opts.BasePath = "/pivot"
	}

	p := &Panel{
		Container: *component.NewContainer("", id, fragments.PivotPanel),
		session:   sess,
		model:     opts.ModelFactory(ds),
		basePath:  opts.BasePath,
	}

	if err := p.model.Calculate(); err != nil {
		return nil, fmt.Errorf("initial pivot calculation failed: %w", err)
	}

	p.areas = component.NewContainer(p.MarkupID(), "areas", fragments.PivotAreas)
	areas := append([]pivot.Area{pivot.AreaNone}, pivot.Areas()...)
	for _, area := range areas {
		ap := NewAreaPanel(p.areas.MarkupID(), area, p.model, p.basePath, p.HandleAreaChanged)
		p.areaPanels = append(p.areaPanels, ap)
		if err := p.areas.Add(ap); err != nil {
			return nil, err
		}
	}

	p.table = NewTable(p.MarkupID(), tableID, p.model)
	p.table.SetVisible(false)

	p.showGrandTotalForColumn = NewCheckBox(p.MarkupID(), "showGrandTotalForColumn", "Grand total for columns",
		p.basePath+"/grand-total/column",
		p.model.ShowGrandTotalForColumn, p.model.SetShowGrandTotalForColumn, nil)
	p.showGrandTotalForRow = NewCheckBox(p.MarkupID(), "showGrandTotalForRow", "Grand total for rows",
		p.basePath+"/grand-total/row",
		p.model.ShowGrandTotalForRow, p.model.SetShowGrandTotalForRow, nil)
	p.autoComputeCheckBox = NewCheckBox(p.MarkupID(), "autoCompute", "Auto compute",
		p.basePath+"/auto-compute",
		p.AutoCompute, p.setAutoCompute, p.onAutoComputeUpdate)
	p.computeLink = newComputeLink(p, p.basePath+"/compute")

	if err := p.Add(p.areas, p.table, p.showGrandTotalForColumn, p.showGrandTotalForRow,
		p.autoComputeCheckBox, p.computeLink); err != nil {
		return nil, err
	}

	if sess != nil {
		sess.Components().Register(p)
	}
	return p, nil
}

// Model returns the bound pivot model
func (p *Panel) Model() pivot.Model { return p.model }

func (p *Panel) Session() *session.Context { return p.session }

func (p *Panel) Areas() *component.Container { return p.areas }

// AreaPanels returns the unassigned-field list followed by one panel per area
func (p *Panel) AreaPanels() []*AreaPanel { return append([]*AreaPanel(nil), p.areaPanels...) }

// AreaPanel returns the configuration control of an area
func (p *Panel) AreaPanel(area pivot.Area) (*AreaPanel, bool) {
	for _, ap := range p.areaPanels {
		if ap.Area() == area {
			return ap, true
		}
	}
	return nil, false
}

// Table returns the current result view
func (p *Panel) Table() *Table { return p.table }

func (p *Panel) ComputeLink() *ComputeLink { return p.computeLink }

func (p *Panel) ShowGrandTotalForColumnCheckBox() *CheckBox { return p.showGrandTotalForColumn }

func (p *Panel) ShowGrandTotalForRowCheckBox() *CheckBox { return p.showGrandTotalForRow }

func (p *Panel) AutoComputeCheckBox() *CheckBox { return p.autoComputeCheckBox }

func (p *Panel) AutoCompute() bool { return p.autoCompute }

func (p *Panel) setAutoCompute(on bool) { p.autoCompute = on }

func (p *Panel) onAutoComputeUpdate(target *component.RenderTarget) {
	p.computeLink.SetVisible(!p.autoCompute)
	target.Add(p.computeLink)
}

// HandleAreaChanged re-renders the area controls and the compute trigger and, with
// auto-compute on, recomputes within the same response
func (p *Panel) HandleAreaChanged(area pivot.Area, target *component.RenderTarget) error {
	target.Add(p.areas, p.computeLink)
	if p.autoCompute {
		return p.Compute(target)
	}
	return nil
}

// Verify reports whether the field configuration can be computed: at least one DATA
// field and at least one ROW or COLUMN field
func (p *Panel) Verify() bool {
	return len(p.model.Fields(pivot.AreaData)) > 0 &&
		(len(p.model.Fields(pivot.AreaColumn)) > 0 || len(p.model.Fields(pivot.AreaRow)) > 0)
}

// Compute recalculates the model and swaps in a new result table. An invalid configuration
// is silently skipped. Calculation errors are returned as is.
func (p *Panel) Compute(target *component.RenderTarget) error {
	if !p.Verify() {
		return nil
	}
	if err := p.model.Calculate(); err != nil {
		return err
	}

	table := NewTable(p.MarkupID(), tableID, p.model)
	if err := p.Replace(p.table, table); err != nil {
		return err
	}
	p.table = table
	target.Add(table)
	log.Printf("[PivotPanel] Computed %s: %d rows x %d columns", p.MarkupID(),
		len(p.model.Result().RowKeys), len(p.model.Result().ColumnKeys))
	return nil
}
