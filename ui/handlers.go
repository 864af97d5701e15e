package ui

import (
	"bytes"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"gopivot/domain/pivot"
	"gopivot/internal/errors"
	"gopivot/ui/component"
	sessionmw "gopivot/ui/middleware"
	"gopivot/ui/panel"
	"gopivot/ui/services"
	"gopivot/ui/templates/fragments"

	"github.com/go-chi/chi/v5"
)

// IndexData is the page model of index.html
type IndexData struct {
	Title    string
	BasePath string
	Dataset  *services.DatasetSummary
	Panel    services.Fragment
}

// ErrorData is the page model of error.html
type ErrorData struct {
	Status  int
	Code    string
	Message string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionmw.SessionFrom(r.Context())
	if !ok {
		a.renderError(w, r, errors.InternalError("request has no session"))
		return
	}
	summary, err := a.data.Summary(r.Context())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	p, err := panelOf(sess)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	a.renderTemplate(w, http.StatusOK, fragments.Index, IndexData{
		Title:    a.config.Title,
		BasePath: a.config.BasePath,
		Dataset:  summary,
		Panel:    services.Frag(p),
	})
}

func (a *App) handleCompute(w http.ResponseWriter, r *http.Request) {
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		return p.ComputeLink().Click(target)
	})
}

func (a *App) handleAutoCompute(w http.ResponseWriter, r *http.Request) {
	checked := formBool(r, "checked")
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		p.AutoComputeCheckBox().Update(checked, target)
		return nil
	})
}

func (a *App) handleGrandTotal(w http.ResponseWriter, r *http.Request) {
	checked := formBool(r, "checked")
	axis := chi.URLParam(r, "axis")
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		switch axis {
		case "row":
			p.ShowGrandTotalForRowCheckBox().Update(checked, target)
		case "column":
			p.ShowGrandTotalForColumnCheckBox().Update(checked, target)
		default:
			return errors.InvalidInputf("unknown grand total axis %q", axis)
		}
		return nil
	})
}

func (a *App) handleAddField(w http.ResponseWriter, r *http.Request) {
	area, err := pivot.ParseArea(chi.URLParam(r, "area"))
	if err != nil {
		a.renderError(w, r, errors.InvalidInputf("%v", err))
		return
	}
	name := r.FormValue("field")
	index := -1
	if raw := r.FormValue("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			a.renderError(w, r, errors.InvalidInputf("index must be a number, got %q", raw))
			return
		}
	}

	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		if _, ok := p.Model().Field(name); !ok {
			return errors.InvalidInputf("unknown field %q", name)
		}
		ap, ok := p.AreaPanel(area)
		if !ok {
			return errors.InvalidInputf("unknown area %q", area)
		}
		return ap.MoveField(name, index, target)
	})
}

func (a *App) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	name := fieldParam(r)
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		ap, err := areaPanelOf(p, name)
		if err != nil {
			return err
		}
		return ap.RemoveField(name, target)
	})
}

func (a *App) handleSetAggregator(w http.ResponseWriter, r *http.Request) {
	name := fieldParam(r)
	agg, err := pivot.ParseAggregator(r.FormValue("aggregator"))
	if err != nil {
		a.renderError(w, r, errors.InvalidInputf("%v", err))
		return
	}
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		ap, err := areaPanelOf(p, name)
		if err != nil {
			return err
		}
		return ap.SetAggregator(name, agg, target)
	})
}

func (a *App) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	name := fieldParam(r)
	value := r.FormValue("value")
	a.interact(w, r, func(p *panel.Panel, target *component.RenderTarget) error {
		ap, err := areaPanelOf(p, name)
		if err != nil {
			return err
		}
		if ap.Area() != pivot.AreaPage {
			return errors.InvalidInputf("field %q is not a filter field", name)
		}
		return ap.SetFilter(name, value, target)
	})
}

// interact runs one user interaction against the session's panel while holding the session
// lock, persists the resulting state and answers with the dirty components
func (a *App) interact(w http.ResponseWriter, r *http.Request, fn func(p *panel.Panel, target *component.RenderTarget) error) {
	sess, ok := sessionmw.SessionFrom(r.Context())
	if !ok {
		a.renderError(w, r, errors.InternalError("request has no session"))
		return
	}

	sess.Lock()
	defer sess.Unlock()

	p, err := panelOf(sess)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	target := component.NewRenderTarget()
	if err := fn(p, target); err != nil {
		if !errors.IsAppError(err) {
			err = errors.Wrap(err, "pivot interaction failed")
		}
		a.renderError(w, r, err)
		return
	}
	a.saveState(r.Context(), sess, p)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderTarget(w, target)
}

func areaPanelOf(p *panel.Panel, name string) (*panel.AreaPanel, error) {
	f, ok := p.Model().Field(name)
	if !ok {
		return nil, errors.InvalidInputf("unknown field %q", name)
	}
	ap, ok := p.AreaPanel(f.Area)
	if !ok {
		return nil, errors.InternalError("no area panel for " + f.Area.String())
	}
	return ap, nil
}

func fieldParam(r *http.Request) string {
	raw := chi.URLParam(r, "field")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func formBool(r *http.Request, key string) bool {
	v := r.FormValue(key)
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}

// renderTarget answers an HTMX request with one out-of-band fragment per dirty component
func (a *App) renderTarget(w http.ResponseWriter, target *component.RenderTarget) {
	if target.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	body, err := a.render.RenderTarget(target)
	if err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("Error writing fragment response: %v", err)
	}
}

func (a *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[UI] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	a.renderTemplate(w, status, fragments.Error, ErrorData{
		Status:  status,
		Code:    errors.GetCode(err),
		Message: err.Error(),
	})
}
