package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gopivot/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PanelStateRepository persists pivot panel state per session so HTMX sessions survive restarts
type PanelStateRepository struct {
	db *sqlx.DB
}

// NewPanelStateRepository creates a new panel state repository
func NewPanelStateRepository(db *sqlx.DB) *PanelStateRepository {
	return &PanelStateRepository{db: db}
}

var _ ports.PanelStateRepository = (*PanelStateRepository)(nil)

// Save inserts or updates the panel state for a session
func (r *PanelStateRepository) Save(ctx context.Context, sessionID uuid.UUID, state json.RawMessage) error {
	query := `
		INSERT INTO pivot_panel_state (session_id, state, version, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			version = pivot_panel_state.version + 1,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, sessionID, []byte(state), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save panel state: %w", err)
	}
	return nil
}

// Load retrieves the panel state for a session, nil when none is stored
func (r *PanelStateRepository) Load(ctx context.Context, sessionID uuid.UUID) (*ports.PanelStateRecord, error) {
	query := `
		SELECT session_id, state, version, updated_at
		FROM pivot_panel_state
		WHERE session_id = $1`

	var record ports.PanelStateRecord
	err := r.db.GetContext(ctx, &record, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing persisted for this session yet
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load panel state: %w", err)
	}
	return &record, nil
}

// Delete removes the panel state of a session
func (r *PanelStateRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM pivot_panel_state WHERE session_id = $1`

	result, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete panel state: %w", err)
	}

	deletedCount, _ := result.RowsAffected()
	if deletedCount == 0 {
		// Not an error if no state existed
		log.Printf("[PanelStateRepository] No panel state found for session %s", sessionID)
	}
	return nil
}

// DeleteOlderThan removes panel states not touched since the cutoff
func (r *PanelStateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM pivot_panel_state WHERE updated_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup panel states: %w", err)
	}

	deletedCount, _ := result.RowsAffected()
	log.Printf("[PanelStateRepository] Cleaned up %d old panel states", deletedCount)
	return deletedCount, nil
}
