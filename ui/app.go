package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gopivot/app"
	"gopivot/internal/session"
	sessionmw "gopivot/ui/middleware"
	"gopivot/ui/services"
	"gopivot/ui/templates/fragments"
)

//go:embed templates/*.html templates/pivot/*.html static
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	config    Config
	templates *template.Template
	render    *services.RenderService
	data      *services.DataService
	sessions  *session.Manager
	states    *app.PanelStateService

	// serializes session creation and resumption
	createMu sync.Mutex
}

// Config holds UI application configuration
type Config struct {
	Port     string
	BasePath string
	Title    string
}

// Deps are the services the UI renders from
type Deps struct {
	Sessions     *session.Manager
	DataSources  *app.DataSourceService
	PanelStates  *app.PanelStateService
	DatasetNotes string
}

// NewApp creates a new UI application
func NewApp(config Config, deps Deps) (*App, error) {
	if deps.Sessions == nil || deps.DataSources == nil {
		return nil, fmt.Errorf("sessions and data sources are required")
	}
	if config.BasePath == "" {
		config.BasePath = "/pivot"
	}
	if config.Title == "" {
		config.Title = "Pivot"
	}
	if deps.PanelStates == nil {
		deps.PanelStates = app.NewPanelStateService(nil)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	a := &App{
		router:    chi.NewRouter(),
		config:    config,
		templates: templates,
		render:    services.NewRenderService(templates),
		data:      services.NewDataService(deps.DataSources, deps.DatasetNotes),
		sessions:  deps.Sessions,
		states:    deps.PanelStates,
	}

	if err := a.setupMiddleware(); err != nil {
		return nil, err
	}
	a.setupRoutes()

	return a, nil
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"frag":  services.Frag,
		"lower": strings.ToLower,
		"add":   func(a, b int) int { return a + b },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/pivot/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, name := range fragments.AllTemplates() {
		if templates.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s is missing", name)
		}
	}
	return templates, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFiles, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Group(func(r chi.Router) {
		r.Use(sessionmw.EnsureSession(a))

		r.Get("/", a.handleIndex)

		r.Route(a.config.BasePath, func(r chi.Router) {
			r.Post("/compute", a.handleCompute)
			r.Post("/auto-compute", a.handleAutoCompute)
			r.Post("/grand-total/{axis}", a.handleGrandTotal)
			r.Post("/areas/{area}/fields", a.handleAddField)
			r.Post("/fields/{field}/remove", a.handleRemoveField)
			r.Post("/fields/{field}/aggregator", a.handleSetAggregator)
			r.Post("/fields/{field}/filter", a.handleSetFilter)
		})
	})
}

// MountAPI serves the JSON and export API under /api
func (a *App) MountAPI(api http.Handler) {
	a.router.Handle("/api/*", api)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves until ctx is cancelled
func (a *App) Start(ctx context.Context) error {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting pivot UI server on :%s", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("Shutting down pivot UI server")
		return srv.Shutdown(shutdownCtx)
	}
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
