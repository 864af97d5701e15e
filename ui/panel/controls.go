package panel

import (
	"gopivot/ui/component"
	"gopivot/ui/templates/fragments"
)

// CheckBox is a boolean control bound to explicit getter and setter functions
type CheckBox struct {
	component.Base
	Label  string
	Action string

	get      func() bool
	set      func(bool)
	onUpdate func(target *component.RenderTarget)
}

// NewCheckBox creates a checkbox. onUpdate may be nil.
func NewCheckBox(parentMarkupID, id, label, action string, get func() bool, set func(bool), onUpdate func(*component.RenderTarget)) *CheckBox {
	return &CheckBox{
		Base:     component.NewBase(parentMarkupID, id, fragments.PivotCheckBox),
		Label:    label,
		Action:   action,
		get:      get,
		set:      set,
		onUpdate: onUpdate,
	}
}

// Checked returns the bound value
func (c *CheckBox) Checked() bool {
	return c.get()
}

// Update stores the submitted value and runs the update hook
func (c *CheckBox) Update(checked bool, target *component.RenderTarget) {
	c.set(checked)
	if c.onUpdate != nil {
		c.onUpdate(target)
	}
}

// ComputeLink is the manual compute trigger. Its disabled state is only a CSS class:
// clicking a "disabled" link still reaches Compute, which then does nothing.
type ComputeLink struct {
	component.Base
	Action string
	panel  *Panel
}

func newComputeLink(p *Panel, action string) *ComputeLink {
	return &ComputeLink{
		Base:   component.NewBase(p.MarkupID(), "compute", fragments.PivotCompute),
		Action: action,
		panel:  p,
	}
}

// CSSClass is evaluated on every render
func (l *ComputeLink) CSSClass() string {
	if l.panel.Verify() {
		return "btn-success"
	}
	return "btn-success disabled"
}

// Click handles activation of the link
func (l *ComputeLink) Click(target *component.RenderTarget) error {
	return l.panel.Compute(target)
}
