package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"

	"gopivot/internal/api"
	"gopivot/internal/config"
	"gopivot/internal/container"
	"gopivot/internal/errors"
	"gopivot/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// maxConcurrentExports bounds how many workbooks are built at once
const maxConcurrentExports = 4

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Database is optional: without it sessions live in memory only
	if appConfig.Database.Enabled() {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	} else {
		log.Println("No DATABASE_URL configured, panel state will not survive restarts")
	}

	if err := appContainer.InitServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	appContainer.StartBackground(ctx)

	// Warm the data source so the first page load does not pay for it
	if _, err := appContainer.DataSources.DataSource(ctx); err != nil {
		log.Fatalf("Failed to load data source: %v", err)
	}

	// Initialize web server
	server, err := ui.NewApp(ui.Config{
		Port:     appConfig.Server.Port,
		BasePath: appConfig.Server.BasePath,
		Title:    "Pivot: " + appContainer.DataSources.Name(),
	}, ui.Deps{
		Sessions:     appContainer.Sessions,
		DataSources:  appContainer.DataSources,
		PanelStates:  appContainer.PanelStates,
		DatasetNotes: appContainer.DatasetNotes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	server.MountAPI(api.NewRouter(api.NewPivotHandler(server, maxConcurrentExports), func() gin.H {
		return gin.H{
			"sessions":    appContainer.Sessions.Len(),
			"data_source": appContainer.DataSources.Name(),
			"persistence": appContainer.PanelStates.Enabled(),
		}
	}))

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("🚀 Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("❌ pprof server failed: %v", err)
			}
		}()
	}

	// Start the server
	if err := server.Start(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
