package migration

import (
	"context"
	"fmt"

	"gopivot/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.DatabaseError("no database connection")
	}

	if err := r.createPanelStateTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create pivot_panel_state table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Drop removes every table this runner creates
func (r *MigrationRunner) Drop(ctx context.Context, db *sqlx.DB) error {
	for _, table := range Tables() {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return errors.Wrapf(err, "failed to drop table %s", table)
		}
	}
	return nil
}

// Tables lists the managed tables in reverse dependency order
func Tables() []string {
	return []string{"pivot_panel_state"}
}

func (r *MigrationRunner) createPanelStateTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pivot_panel_state (
			session_id UUID PRIMARY KEY,
			state JSONB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_pivot_panel_state_updated_at
		ON pivot_panel_state (updated_at)
	`)
	return err
}
