// Package calendar implements the event store operations, month grid
// building and reminder scanning behind the site's calendar widget.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/storage/models"
	"github.com/pomtech-site/backend/internal/websocket"
)

// Validation errors surfaced to the user; nothing is persisted when one
// of these is returned.
var (
	ErrEmptyText         = errors.New("event text must not be empty")
	ErrBadDate           = errors.New("event date must be a valid YYYY-MM-DD key")
	ErrBadTime           = errors.New("event time must be HH:MM")
	ErrBadReminder       = errors.New("unknown reminder lead time")
	ErrReminderNeedsTime = errors.New("a reminder requires an event time")
)

// ErrNotFound aliases the storage sentinel for callers that only import
// this package.
var ErrNotFound = storage.ErrNotFound

// Engine owns the persisted event store, the month view and the
// session-scoped reminder state. All operations go through it; there is
// no ambient shared state.
type Engine struct {
	repo        *storage.EventRepository
	loc         *time.Location
	weekStart   time.Weekday
	broadcaster *websocket.EventBroadcaster
	scanner     *Scanner
}

// NewEngine creates a calendar engine. weekStart is "monday" or "sunday";
// broadcaster may be nil when no clients need push updates (tests).
func NewEngine(repo *storage.EventRepository, loc *time.Location, weekStart string, hub *websocket.Hub) *Engine {
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	ws := time.Sunday
	if weekStart == "monday" {
		ws = time.Monday
	}

	return &Engine{
		repo:        repo,
		loc:         loc,
		weekStart:   ws,
		broadcaster: broadcaster,
		scanner:     newScanner(repo, loc, broadcaster),
	}
}

// Location returns the engine's timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Today returns the current day's date key in the engine's timezone.
func (e *Engine) Today() models.DateKey {
	return models.DateKeyOf(time.Now().In(e.loc))
}

// CreateOrUpdateEvent validates and persists an event. A zero id means
// create; a known id replaces the stored event in place (its position in
// the day is recomputed by ordering on read). Returns the stored event.
func (e *Engine) CreateOrUpdateEvent(ctx context.Context, ev models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := validate(&ev); err != nil {
		return nil, err
	}

	if ev.ID == 0 {
		ev.ID = e.newEventID(ctx)
		if err := e.repo.Create(ctx, &ev); err != nil {
			return nil, err
		}
		e.broadcastChange("created", ev)
		return &ev, nil
	}

	existing, err := e.repo.GetByID(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		ev.CreatedAt = time.Now().UTC()
		if err := e.repo.Create(ctx, &ev); err != nil {
			return nil, err
		}
		e.broadcastChange("created", ev)
		return &ev, nil
	}

	ev.CreatedAt = existing.CreatedAt
	if err := e.repo.Update(ctx, &ev); err != nil {
		return nil, err
	}
	e.broadcastChange("updated", ev)
	return &ev, nil
}

// DeleteEvent removes an event and clears its session notification mark,
// so a recreated event with the same id is eligible for a fresh reminder.
func (e *Engine) DeleteEvent(ctx context.Context, id int64) error {
	ev, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}

	if err := e.repo.Delete(ctx, id); err != nil {
		return err
	}
	e.scanner.ClearNotified(id)
	e.broadcastChange("deleted", *ev)
	return nil
}

// EventsOn lists a day's events, time-ascending with untimed events first.
func (e *Engine) EventsOn(ctx context.Context, date models.DateKey) ([]models.CalendarEvent, error) {
	return e.repo.ListByDate(ctx, date)
}

// ScanReminders runs one reminder pass against the given instant.
// It is idempotent per event id within the process lifetime.
func (e *Engine) ScanReminders(ctx context.Context, now time.Time) (int, error) {
	return e.scanner.Scan(ctx, now)
}

// validate enforces the creation-time invariants. They are re-checked on
// every update, so an edit cannot clear the time while keeping a reminder.
func validate(ev *models.CalendarEvent) error {
	date, err := models.ParseDateKey(string(ev.Date))
	if err != nil {
		return ErrBadDate
	}
	ev.Date = date

	ev.Text = strings.TrimSpace(ev.Text)
	if ev.Text == "" {
		return ErrEmptyText
	}

	if ev.Time != "" {
		if _, err := time.Parse("15:04", ev.Time); err != nil {
			return ErrBadTime
		}
	}

	if ev.Reminder == "" {
		ev.Reminder = models.ReminderNone
	}
	if !ev.Reminder.Valid() {
		return ErrBadReminder
	}
	if _, hasLead := ev.Reminder.LeadMinutes(); hasLead && ev.Time == "" {
		return ErrReminderNeedsTime
	}

	return nil
}

// newEventID derives a store-unique id from the current time. Two creates
// in the same millisecond bump forward until a free id is found.
func (e *Engine) newEventID(ctx context.Context) int64 {
	id := time.Now().UnixMilli()
	for {
		existing, err := e.repo.GetByID(ctx, id)
		if err != nil || existing == nil {
			return id
		}
		id++
	}
}

func (e *Engine) broadcastChange(action string, ev models.CalendarEvent) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastEventChanged(action, ev)
	}
}
