package ui

import (
	"context"
	"log"
	"net/http"

	"gopivot/internal/errors"
	"gopivot/internal/session"
	"gopivot/ui/panel"

	"github.com/google/uuid"
)

const (
	sessionCookie = "gopivot_session"
	panelID       = "pivot"
)

// EnsureSession returns the session named by the cookie, resuming persisted state when it is
// no longer in memory, or starts a new one
func (a *App) EnsureSession(w http.ResponseWriter, r *http.Request) (*session.Context, error) {
	return a.lookupSession(w, r, true)
}

// ResolvePanel finds the panel of an existing session without starting one
func (a *App) ResolvePanel(r *http.Request) (*panel.Panel, *session.Context, error) {
	sess, err := a.lookupSession(nil, r, false)
	if err != nil {
		return nil, nil, err
	}
	p, err := panelOf(sess)
	if err != nil {
		return nil, nil, err
	}
	return p, sess, nil
}

func (a *App) lookupSession(w http.ResponseWriter, r *http.Request, create bool) (*session.Context, error) {
	id, hasCookie := sessionIDFrom(r)
	if hasCookie {
		if sess, ok := a.sessions.Get(id); ok {
			return sess, nil
		}
	}

	a.createMu.Lock()
	defer a.createMu.Unlock()

	if hasCookie {
		if sess, ok := a.sessions.Get(id); ok {
			return sess, nil
		}
		sess, err := a.resumeSession(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
	}

	if !create {
		return nil, errors.NotFound("pivot session")
	}

	sess := a.sessions.Create()
	if _, err := a.newPanel(r.Context(), sess); err != nil {
		a.sessions.Delete(sess.ID)
		return nil, err
	}
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID.String(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

// resumeSession rebuilds a session from its persisted state. It returns nil when no
// state is stored.
func (a *App) resumeSession(ctx context.Context, id uuid.UUID) (*session.Context, error) {
	var state panel.State
	found, err := a.states.Load(ctx, id, &state)
	if err != nil {
		log.Printf("[Session] Could not load state of %s, starting fresh: %v", id, err)
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	sess := a.sessions.CreateWithID(id)
	p, err := a.newPanel(ctx, sess)
	if err != nil {
		a.sessions.Delete(id)
		return nil, err
	}
	if err := p.Restore(state); err != nil {
		log.Printf("[Session] Discarding unusable state of %s: %v", id, err)
		if _, err := a.newPanel(ctx, sess); err != nil {
			a.sessions.Delete(id)
			return nil, err
		}
		return sess, nil
	}
	log.Printf("[Session] Resumed session %s from stored state", id)
	return sess, nil
}

func (a *App) newPanel(ctx context.Context, sess *session.Context) (*panel.Panel, error) {
	ds, err := a.data.DataSource(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "data source unavailable")
	}
	p, err := panel.NewPanel(sess, panelID, ds, panel.Options{BasePath: a.config.BasePath})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build pivot panel")
	}
	return p, nil
}

// saveState persists the panel after a change; failures only cost resumability
func (a *App) saveState(ctx context.Context, sess *session.Context, p *panel.Panel) {
	if !a.states.Enabled() {
		return
	}
	if err := a.states.Save(ctx, sess.ID, p.Snapshot()); err != nil {
		log.Printf("[Session] Failed to save state of %s: %v", sess.ID, err)
	}
}

func panelOf(sess *session.Context) (*panel.Panel, error) {
	c, ok := sess.Components().Lookup(panelID)
	if !ok {
		return nil, errors.NotFound("pivot panel")
	}
	p, ok := c.(*panel.Panel)
	if !ok {
		return nil, errors.InternalError("session component is not a pivot panel")
	}
	return p, nil
}

func sessionIDFrom(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
