package panel

import (
	"gopivot/domain/pivot"
	"gopivot/ui/component"
)

// State is the persisted form of a panel
type State struct {
	Model        pivot.State `json:"model"`
	AutoCompute  bool        `json:"auto_compute"`
	TableVisible bool        `json:"table_visible"`
}

// Snapshot captures the panel's configuration
func (p *Panel) Snapshot() State {
	return State{
		Model:        p.model.Snapshot(),
		AutoCompute:  p.autoCompute,
		TableVisible: p.table.Visible(),
	}
}

// Restore applies a snapshot. A table that was visible when the snapshot was taken is
// recomputed so it shows again.
func (p *Panel) Restore(state State) error {
	if err := p.model.Restore(state.Model); err != nil {
		return err
	}
	p.autoCompute = state.AutoCompute
	p.computeLink.SetVisible(!state.AutoCompute)
	if state.TableVisible {
		return p.Compute(component.NewRenderTarget())
	}
	return nil
}
