// Package main is the entry point for the POM TECH site server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/pomtech-site/backend/internal/api"
	"github.com/pomtech-site/backend/internal/assetcache"
	"github.com/pomtech-site/backend/internal/calendar"
	"github.com/pomtech-site/backend/internal/config"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "./config.yaml", "Path to the YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting POM TECH site server (version: %s)...", version)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve timezone: %v", err)
	}

	// Initialize database
	db, err := storage.NewDB(filepath.Join(cfg.DataDir, "pomtech.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	eventRepo := storage.NewEventRepository(db)
	prefRepo := storage.NewPreferenceRepository(db)
	searchRepo := storage.NewSearchHistoryRepository(db, cfg.SearchHistoryLimit)

	// Initialize the calendar engine and its scheduler
	engine := calendar.NewEngine(eventRepo, loc, cfg.WeekStart, hub)
	scheduler := calendar.NewScheduler(engine, hub, cfg.ReminderScan)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start calendar scheduler: %v", err)
	}

	// Initialize the offline asset cache when an origin is configured.
	var cacheWorker *assetcache.Worker
	if cfg.Assets.Origin != "" {
		store := assetcache.NewStore(afero.NewOsFs(), cfg.Assets.Dir)
		cacheWorker, err = assetcache.NewWorker(store, cfg.Assets.Origin, cfg.Assets.Version, cfg.Assets.Manifest)
		if err != nil {
			log.Fatalf("Failed to configure asset cache: %v", err)
		}

		installCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := cacheWorker.Bootstrap(installCtx); err != nil {
			// Install is all-or-nothing and a failed install never
			// activates, so any earlier complete generation keeps
			// serving; worst case the site falls through to the origin.
			log.Printf("Warning: asset cache bootstrap failed: %v", err)
		}
		cancel()
	}

	// Initialize HTTP router with services
	router := api.NewRouter(api.Deps{
		DB:          db,
		Hub:         hub,
		Engine:      engine,
		EventRepo:   eventRepo,
		PrefRepo:    prefRepo,
		SearchRepo:  searchRepo,
		CacheWorker: cacheWorker,
		StaticDir:   cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
