package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager keeps the live session contexts in memory
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Context
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Context)}
}

// Create registers a new session with a fresh id
func (m *Manager) Create() *Context {
	return m.CreateWithID(uuid.New())
}

// CreateWithID registers a session under a known id, replacing any live session with that id.
// Used to resume a session whose state was persisted before a restart.
func (m *Manager) CreateWithID(id uuid.UUID) *Context {
	sess := newContextWithID(id)
	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	log.Printf("[SessionManager] Created session %s", id)
	return sess
}

// Get returns a live session and records activity on it
func (m *Manager) Get(id uuid.UUID) (*Context, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		sess.Touch()
	}
	return sess, ok
}

// Delete drops a session
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many were removed
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps idle sessions every interval until ctx is cancelled
func (m *Manager) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(ttl); n > 0 {
					log.Printf("[SessionManager] Expired %d idle sessions", n)
				}
			}
		}
	}()
}
