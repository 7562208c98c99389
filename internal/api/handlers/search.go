package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pomtech-site/backend/internal/api/middleware"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/storage/models"
)

// SearchHistoryResponse is the capped list of recent searches plus the
// timestamp of the most recent one.
type SearchHistoryResponse struct {
	Entries   []models.SearchEntry `json:"entries"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
}

// ListSearchHistory returns the retained search queries, newest first.
func ListSearchHistory(repo *storage.SearchHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := repo.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query search history")
			return
		}
		if entries == nil {
			entries = []models.SearchEntry{}
		}

		response := SearchHistoryResponse{Entries: entries}
		if ts, err := repo.LastUpdated(r.Context()); err == nil && !ts.IsZero() {
			response.UpdatedAt = &ts
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// AddSearchHistory records one search query.
func AddSearchHistory(repo *storage.SearchHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		req.Query = strings.TrimSpace(req.Query)
		if req.Query == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Query must not be empty")
			return
		}

		entry, err := repo.Add(r.Context(), req.Query)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to record query")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entry)
	}
}

// ClearSearchHistory removes the whole history.
func ClearSearchHistory(repo *storage.SearchHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Clear(r.Context()); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to clear search history")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
