package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"gopivot/ui/component"
)

// Fragment is the data every component template renders from. OOB marks the root element
// for an out-of-band swap.
type Fragment struct {
	C   component.Component
	OOB bool
}

// Frag wraps a component for in-place rendering inside another template
func Frag(c component.Component) Fragment {
	return Fragment{C: c}
}

type RenderService struct {
	templates *template.Template
}

func NewRenderService(templates *template.Template) *RenderService {
	return &RenderService{
		templates: templates,
	}
}

// RenderComponent renders one component with its own template
func (s *RenderService) RenderComponent(c component.Component, oob bool) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, c.Template(), Fragment{C: c, OOB: oob}); err != nil {
		return "", fmt.Errorf("failed to render %s with %s: %w", c.MarkupID(), c.Template(), err)
	}
	return buf.String(), nil
}

// RenderTarget renders every dirty component of a response as an out-of-band fragment,
// in the order they were added
func (s *RenderService) RenderTarget(target *component.RenderTarget) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range target.Components() {
		html, err := s.RenderComponent(c, true)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			return nil, err
		}
		buf.WriteString(html)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
