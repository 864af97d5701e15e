package session

import (
	"sync"
	"time"

	"gopivot/ui/component"

	"github.com/google/uuid"
)

// Context is the state one browser session owns: its components and a lock that
// serializes the session's interactions
type Context struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	seenMu     sync.Mutex
	lastSeen   time.Time
	components *component.Registry
}

// NewContext creates a session context with a fresh id
func NewContext() *Context {
	return newContextWithID(uuid.New())
}

func newContextWithID(id uuid.UUID) *Context {
	now := time.Now()
	return &Context{
		ID:         id,
		CreatedAt:  now,
		lastSeen:   now,
		components: component.NewRegistry(),
	}
}

// Lock acquires the session for the duration of one interaction
func (c *Context) Lock() { c.mu.Lock() }

// Unlock releases the session
func (c *Context) Unlock() { c.mu.Unlock() }

// Components is the session's host container for top-level components
func (c *Context) Components() *component.Registry {
	return c.components
}

// Touch records activity on the session
func (c *Context) Touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

// LastSeen returns the time of the last recorded activity
func (c *Context) LastSeen() time.Time {
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	return c.lastSeen
}
