package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pomtech-site/backend/internal/api/middleware"
	"github.com/pomtech-site/backend/internal/calendar"
)

// GetMonth returns the renderable grid for one month. The month path
// variable is 1-based (1 = January).
func GetMonth(engine *calendar.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		year, err := strconv.Atoi(vars["year"])
		if err != nil || year < 1 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid year")
			return
		}

		month, err := strconv.Atoi(vars["month"])
		if err != nil || month < 1 || month > 12 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid month")
			return
		}

		grid, err := engine.MonthGrid(r.Context(), year, time.Month(month), engine.Today())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build month grid")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(grid)
	}
}
