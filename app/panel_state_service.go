package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gopivot/ports"

	"github.com/google/uuid"
)

// PanelStateService persists panel snapshots. Without a repository every call is a no-op,
// so sessions simply live in memory.
type PanelStateService struct {
	repo ports.PanelStateRepository
}

// NewPanelStateService creates the service; repo may be nil
func NewPanelStateService(repo ports.PanelStateRepository) *PanelStateService {
	return &PanelStateService{repo: repo}
}

// Enabled reports whether snapshots are persisted
func (s *PanelStateService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Save stores a JSON snapshot for the session
func (s *PanelStateService) Save(ctx context.Context, sessionID uuid.UUID, state interface{}) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode panel state: %w", err)
	}
	if err := s.repo.Save(ctx, sessionID, data); err != nil {
		return fmt.Errorf("failed to save panel state: %w", err)
	}
	return nil
}

// Load decodes the stored snapshot into state. It reports false when nothing is stored.
func (s *PanelStateService) Load(ctx context.Context, sessionID uuid.UUID, state interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	rec, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load panel state: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	if err := json.Unmarshal(rec.State, state); err != nil {
		return false, fmt.Errorf("failed to decode panel state v%d: %w", rec.Version, err)
	}
	return true, nil
}

// Forget removes the stored snapshot for the session
func (s *PanelStateService) Forget(ctx context.Context, sessionID uuid.UUID) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.Delete(ctx, sessionID)
}

// PurgeExpired removes snapshots untouched for longer than ttl
func (s *PanelStateService) PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	n, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge panel states: %w", err)
	}
	if n > 0 {
		log.Printf("[PanelStateService] Purged %d expired panel states", n)
	}
	return n, nil
}
