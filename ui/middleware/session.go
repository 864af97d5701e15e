package middleware

import (
	"context"
	"log"
	"net/http"

	"gopivot/internal/errors"
	"gopivot/internal/session"
)

type contextKey struct{}

// SessionEnsurer returns the caller's session, starting one when needed
type SessionEnsurer interface {
	EnsureSession(w http.ResponseWriter, r *http.Request) (*session.Context, error)
}

// EnsureSession is middleware that makes sure every request carries a live session
func EnsureSession(ensurer SessionEnsurer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := ensurer.EnsureSession(w, r)
			if err != nil {
				log.Printf("[EnsureSession] Failed to start session: %v", err)
				http.Error(w, "session unavailable", errors.HTTPStatus(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession stores a session in the context
func WithSession(ctx context.Context, sess *session.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFrom returns the session stored by EnsureSession
func SessionFrom(ctx context.Context) (*session.Context, bool) {
	sess, ok := ctx.Value(contextKey{}).(*session.Context)
	return sess, ok && sess != nil
}
