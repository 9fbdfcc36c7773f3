package main

import (
	"context"
	"log"
	"time"

	"autosched-insights/internal/api"
	"autosched-insights/internal/api/handler"
	"autosched-insights/internal/config"
	"autosched-insights/internal/store"
	"autosched-insights/pkg/router"
)

const watchInterval = 5 * time.Second

// @title Autosched Insights API
// @version 1.0
// @description Dashboard API over grouped scheduler-log datasets.
// @BasePath /api/v1
func main() {
	cfg := config.Load()

	// Init DB
	if err := store.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("❌ Failed to open run store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := handler.NewHub()
	go hub.Run(ctx)

	h := handler.New(cfg, hub)
	go h.Cache.Watch(ctx, watchInterval)

	// Create router
	r := router.New()

	// Register API routes, Swagger UI and the dashboard page
	api.RegisterRoutes(r, h, "./web")

	// Start server
	if err := r.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
