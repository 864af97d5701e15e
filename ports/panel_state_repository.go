package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PanelStateRecord is the persisted configuration of one session's pivot panel
type PanelStateRecord struct {
	SessionID uuid.UUID       `json:"session_id" db:"session_id"`
	State     json.RawMessage `json:"state" db:"state"`
	Version   int             `json:"version" db:"version"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// PanelStateRepository stores panel state so a session survives a server restart
type PanelStateRepository interface {
	// Save inserts or replaces the state of a session, bumping its version
	Save(ctx context.Context, sessionID uuid.UUID, state json.RawMessage) error

	// Load returns the state of a session, or nil when none is stored
	Load(ctx context.Context, sessionID uuid.UUID) (*PanelStateRecord, error)

	// Delete removes the state of a session
	Delete(ctx context.Context, sessionID uuid.UUID) error

	// DeleteOlderThan removes states not updated since the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
