// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pomtech-site/backend/internal/api/handlers"
	"github.com/pomtech-site/backend/internal/api/middleware"
	"github.com/pomtech-site/backend/internal/assetcache"
	"github.com/pomtech-site/backend/internal/calendar"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/websocket"
)

// Deps collects everything the router serves.
type Deps struct {
	DB          *storage.DB
	Hub         *websocket.Hub
	Engine      *calendar.Engine
	EventRepo   *storage.EventRepository
	PrefRepo    *storage.PreferenceRepository
	SearchRepo  *storage.SearchHistoryRepository
	CacheWorker *assetcache.Worker // nil disables the asset cache
	StaticDir   string             // fallback when the cache is disabled
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(d.DB, d.CacheWorker)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(d.EventRepo, d.Hub, d.CacheWorker)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub)).Methods("GET")

	// Calendar endpoints
	api.HandleFunc("/events", handlers.ListEvents(d.Engine)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(d.Engine)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(d.Engine)).Methods("PUT")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(d.Engine)).Methods("DELETE")
	api.HandleFunc("/months/{year}/{month}", handlers.GetMonth(d.Engine)).Methods("GET")

	// Preference endpoints
	api.HandleFunc("/preferences", handlers.GetPreferences(d.PrefRepo)).Methods("GET")
	api.HandleFunc("/preferences", handlers.UpdatePreferences(d.PrefRepo)).Methods("PUT")

	// Search history endpoints
	api.HandleFunc("/search-history", handlers.ListSearchHistory(d.SearchRepo)).Methods("GET")
	api.HandleFunc("/search-history", handlers.AddSearchHistory(d.SearchRepo)).Methods("POST")
	api.HandleFunc("/search-history", handlers.ClearSearchHistory(d.SearchRepo)).Methods("DELETE")

	// Site assets: offline-first cache when configured, plain static
	// files otherwise.
	if d.CacheWorker != nil {
		r.PathPrefix("/").Handler(d.CacheWorker)
	} else {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir)))
	}

	return r
}
