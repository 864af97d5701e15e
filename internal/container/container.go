package container

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopivot/adapters/excel"
	"gopivot/adapters/postgres"
	"gopivot/app"
	"gopivot/internal/config"
	"gopivot/internal/migration"
	"gopivot/internal/session"
	"gopivot/internal/testkit"
	"gopivot/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	PanelStateRepo ports.PanelStateRepository

	// Data
	Loader       ports.DataSourceLoader
	DataSources  *app.DataSourceService
	DatasetNotes string

	// Sessions
	Sessions    *session.Manager
	PanelStates *app.PanelStateService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Sessions: session.NewManager(),
	}

	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	runner := migration.NewRunner()
	if c.Config.Database.Reset {
		log.Println("🔄 Resetting database - dropping managed tables...")
		if err := runner.Drop(context.Background(), db); err != nil {
			return fmt.Errorf("database reset failed: %w", err)
		}
	}
	if err := runner.Run(context.Background(), db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.PanelStateRepo = postgres.NewPanelStateRepository(db)
	log.Printf("Container initialized with database connection (schema %s)", runner.Version())
	return nil
}

// InitServices wires the data source and session services. Call after InitWithDatabase
// when a database is configured.
func (c *Container) InitServices() error {
	loader, err := c.newLoader()
	if err != nil {
		return err
	}
	c.Loader = loader
	c.DataSources = app.NewDataSourceService(loader)
	c.PanelStates = app.NewPanelStateService(c.PanelStateRepo)

	if path := c.Config.Data.NotesFile; path != "" {
		notes, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: could not read dataset notes %s: %v", path, err)
		} else {
			c.DatasetNotes = string(notes)
		}
	}

	log.Printf("Data source: %s (persistence enabled: %v)", loader.Name(), c.PanelStates.Enabled())
	return nil
}

// newLoader picks the data source: a query, a spreadsheet, or generated sales data
func (c *Container) newLoader() (ports.DataSourceLoader, error) {
	data := c.Config.Data
	switch {
	case data.Query != "":
		if c.DB == nil {
			return nil, fmt.Errorf("DATA_QUERY requires a database connection")
		}
		return postgres.NewQueryLoader(c.DB, data.Query), nil
	case data.File != "":
		cfg := excel.DefaultExcelConfig()
		cfg.FilePath = data.File
		cfg.Sheet = data.Sheet
		cfg.Enabled = true
		return excel.NewLoader(cfg), nil
	default:
		cfg := testkit.DefaultShoppingConfig()
		cfg.OrderCount = data.Rows
		return testkit.NewShoppingLoader(cfg), nil
	}
}

// StartBackground runs the session janitor and expired state purge until ctx is done
func (c *Container) StartBackground(ctx context.Context) {
	c.Sessions.StartJanitor(ctx, c.Config.Session.TTL, c.Config.Session.SweepInterval)
	if c.PanelStates.Enabled() {
		if _, err := c.PanelStates.PurgeExpired(ctx, c.Config.Session.StateRetention); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
