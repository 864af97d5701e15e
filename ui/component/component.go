// Package component provides the small server-side component tree the HTMX UI renders from.
// A response re-renders only the components added to its RenderTarget, each as an
// out-of-band swap keyed by the component's markup id.
package component

import (
	"fmt"
	"strings"
)

// Component is a renderable node of the UI tree
type Component interface {
	// ID is the component's id within its parent
	ID() string
	// MarkupID is the DOM id used for out-of-band swaps
	MarkupID() string
	Visible() bool
	SetVisible(visible bool)
	// Template names the html/template that renders the component
	Template() string
}

// Base implements the bookkeeping half of Component
type Base struct {
	id       string
	markupID string
	template string
	visible  bool
}

// NewBase creates a visible component base. The markup id is the parent's markup id
// joined with the component id.
func NewBase(parentMarkupID, id, template string) Base {
	markupID := id
	if parentMarkupID != "" {
		markupID = parentMarkupID + "-" + id
	}
	return Base{
		id:       id,
		markupID: sanitize(markupID),
		template: template,
		visible:  true,
	}
}

func (b *Base) ID() string              { return b.id }
func (b *Base) MarkupID() string        { return b.markupID }
func (b *Base) Visible() bool           { return b.visible }
func (b *Base) SetVisible(visible bool) { b.visible = visible }
func (b *Base) Template() string        { return b.template }

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

// Container holds ordered child components
type Container struct {
	Base
	children []Component
}

// NewContainer creates an empty container
func NewContainer(parentMarkupID, id, template string) *Container {
	return &Container{Base: NewBase(parentMarkupID, id, template)}
}

// Add appends children; ids must be unique within the container
func (c *Container) Add(children ...Component) error {
	for _, child := range children {
		if _, exists := c.Get(child.ID()); exists {
			return fmt.Errorf("component %q already has a child with id %q", c.ID(), child.ID())
		}
		c.children = append(c.children, child)
	}
	return nil
}

// Get returns the child with the given id
func (c *Container) Get(id string) (Component, bool) {
	for _, child := range c.children {
		if child.ID() == id {
			return child, true
		}
	}
	return nil, false
}

// Children returns the children in insertion order
func (c *Container) Children() []Component {
	return append([]Component(nil), c.children...)
}

// Replace swaps old for replacement at the same position
func (c *Container) Replace(old, replacement Component) error {
	for i, child := range c.children {
		if child == old {
			c.children[i] = replacement
			return nil
		}
	}
	return fmt.Errorf("component %q is not a child of %q", old.ID(), c.ID())
}
