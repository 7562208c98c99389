// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pomtech-site/backend/internal/assetcache"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
	CacheReady  bool   `json:"cache_ready"`
}

// HealthCheck returns a handler that performs a health check.
// cacheWorker may be nil when the asset cache is disabled.
func HealthCheck(db *storage.DB, cacheWorker *assetcache.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
			CacheReady:  cacheWorker != nil && cacheWorker.Ready(),
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount     int    `json:"events_count"`
	DaysWithEvents  int    `json:"days_with_events"`
	ConnectedWS     int    `json:"connected_ws_clients"`
	CacheGeneration string `json:"cache_generation,omitempty"`
}

// Status returns a handler that provides system status information.
func Status(eventRepo *storage.EventRepository, hub *websocket.Hub, cacheWorker *assetcache.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, days, err := eventRepo.Counts(r.Context())
		if err != nil {
			events, days = 0, 0
		}

		response := StatusResponse{
			EventsCount:    events,
			DaysWithEvents: days,
			ConnectedWS:    hub.ClientCount(),
		}
		if cacheWorker != nil {
			response.CacheGeneration = cacheWorker.Version()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
