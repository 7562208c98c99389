package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pomtech-site/backend/internal/api/middleware"
	"github.com/pomtech-site/backend/internal/calendar"
	"github.com/pomtech-site/backend/internal/storage/models"
)

// EventRequest is the create/update payload for a calendar event.
type EventRequest struct {
	Date     string `json:"date"`
	Text     string `json:"text"`
	Time     string `json:"time"`
	Reminder string `json:"reminder"`
}

// ListEvents returns a day's events, untimed first then by time ascending.
func ListEvents(engine *calendar.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := models.ParseDateKey(r.URL.Query().Get("date"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date must be a valid YYYY-MM-DD key")
			return
		}

		events, err := engine.EventsOn(r.Context(), date)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}
		if events == nil {
			events = []models.CalendarEvent{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// CreateEvent creates a new event.
func CreateEvent(engine *calendar.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ev, err := engine.CreateOrUpdateEvent(r.Context(), models.CalendarEvent{
			Date:     models.DateKey(req.Date),
			Text:     req.Text,
			Time:     req.Time,
			Reminder: models.Reminder(req.Reminder),
		})
		if err != nil {
			writeEventError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ev)
	}
}

// UpdateEvent replaces an existing event in place. The same validation as
// creation applies, so an edit cannot keep a reminder without a time.
func UpdateEvent(engine *calendar.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid event id")
			return
		}

		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ev, err := engine.CreateOrUpdateEvent(r.Context(), models.CalendarEvent{
			ID:       id,
			Date:     models.DateKey(req.Date),
			Text:     req.Text,
			Time:     req.Time,
			Reminder: models.Reminder(req.Reminder),
		})
		if err != nil {
			writeEventError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// DeleteEvent removes an event.
func DeleteEvent(engine *calendar.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid event id")
			return
		}

		if err := engine.DeleteEvent(r.Context(), id); err != nil {
			writeEventError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrEmptyText),
		errors.Is(err, calendar.ErrBadDate),
		errors.Is(err, calendar.ErrBadTime),
		errors.Is(err, calendar.ErrBadReminder),
		errors.Is(err, calendar.ErrReminderNeedsTime):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	case errors.Is(err, calendar.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
	default:
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to store event")
	}
}
