// Package models contains the domain models for the application.
package models

import (
	"strconv"
	"time"
)

// Reminder is the lead time before an event's scheduled time at which a
// notification fires, encoded in minutes ("5", "10", "30", "60") or "none".
type Reminder string

const ReminderNone Reminder = "none"

// LeadMinutes returns the lead time in minutes. ok is false for
// ReminderNone and for unrecognized values.
func (r Reminder) LeadMinutes() (int, bool) {
	if r == ReminderNone || r == "" {
		return 0, false
	}
	min, err := strconv.Atoi(string(r))
	if err != nil || min <= 0 {
		return 0, false
	}
	return min, true
}

// Valid reports whether r is one of the supported lead times.
func (r Reminder) Valid() bool {
	switch r {
	case ReminderNone, "", "5", "10", "30", "60":
		return true
	}
	return false
}

// CalendarEvent is a user-created entry on a single calendar day.
type CalendarEvent struct {
	// ID is unique across the whole store, derived from the creation
	// timestamp (unix milliseconds).
	ID        int64     `json:"id"`
	Date      DateKey   `json:"date"`
	Text      string    `json:"text"`
	Time      string    `json:"time,omitempty"` // "HH:MM", empty for untimed events
	Reminder  Reminder  `json:"reminder"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduledAt resolves the event's wall-clock time on its day in loc.
// ok is false for untimed events.
func (e *CalendarEvent) ScheduledAt(loc *time.Location) (time.Time, bool) {
	if e.Time == "" {
		return time.Time{}, false
	}
	hm, err := time.Parse("15:04", e.Time)
	if err != nil {
		return time.Time{}, false
	}
	day, err := e.Date.Time(loc)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute), true
}
