package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"gopivot/app"
	"gopivot/internal/session"
	"gopivot/internal/testkit"
	"gopivot/ui"
)

// Runs the pivot UI over generated sales data, without a database or configuration.
func main() {
	port := flag.String("port", "8080", "port to listen on")
	orders := flag.Int("orders", 500, "number of generated order lines")
	seed := flag.Int64("seed", 42, "random seed for the generated data")
	flag.Parse()

	cfg := testkit.DefaultShoppingConfig()
	cfg.OrderCount = *orders
	cfg.Seed = *seed

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pivotApp, err := ui.NewApp(ui.Config{
		Port:  *port,
		Title: "Pivot demo",
	}, ui.Deps{
		Sessions:    session.NewManager(),
		DataSources: app.NewDataSourceService(testkit.NewShoppingLoader(cfg)),
	})
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting pivot demo on http://localhost:%s", *port)
	if err := pivotApp.Start(ctx); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
