package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pomtech-site/backend/internal/api/middleware"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/storage/models"
)

// PreferencesResponse represents site preferences in API responses.
type PreferencesResponse struct {
	Theme string `json:"theme"`
}

// GetPreferences returns all stored preferences.
func GetPreferences(repo *storage.PreferenceRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := repo.All(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query preferences")
			return
		}

		byKey := make(map[string]string, len(prefs))
		for _, p := range prefs {
			byKey[p.Key] = p.Value
		}

		response := PreferencesResponse{
			Theme: byKey[models.PrefTheme],
		}
		if response.Theme == "" {
			response.Theme = models.ThemeLight
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// UpdatePreferences upserts the provided preferences.
func UpdatePreferences(repo *storage.PreferenceRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PreferencesResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Theme != "" {
			if req.Theme != models.ThemeDark && req.Theme != models.ThemeLight {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown theme")
				return
			}
			if err := repo.Set(r.Context(), models.PrefTheme, req.Theme); err != nil {
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update preferences")
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(req)
	}
}
