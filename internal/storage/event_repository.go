package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// EventRepository provides data access for calendar events.
//
// Events are stored one row per event keyed by id; a day's "bucket" is the
// set of rows sharing a date key, so an emptied bucket disappears with its
// last row rather than lingering as an empty list.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{BaseRepository: NewBaseRepository(db)}
}

const eventColumns = "id, date, text, time, reminder, created_at, updated_at"

// Create inserts a new calendar event. The caller assigns the id.
func (r *EventRepository) Create(ctx context.Context, ev *models.CalendarEvent) error {
	ev.CreatedAt = r.Now()
	ev.UpdatedAt = ev.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO calendar_events (id, date, text, time, reminder, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Date, ev.Text, ev.Time, ev.Reminder, ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// Update replaces an existing event's fields in place.
func (r *EventRepository) Update(ctx context.Context, ev *models.CalendarEvent) error {
	ev.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE calendar_events SET date = ?, text = ?, time = ?, reminder = ?, updated_at = ?
		WHERE id = ?
	`, ev.Date, ev.Text, ev.Time, ev.Reminder, ev.UpdatedAt, ev.ID)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event %d: %w", ev.ID, ErrNotFound)
	}
	return nil
}

// GetByID retrieves an event by its id.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	ev := &models.CalendarEvent{}
	err := r.DB().QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE id = ?", id,
	).Scan(&ev.ID, &ev.Date, &ev.Text, &ev.Time, &ev.Reminder, &ev.CreatedAt, &ev.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return ev, nil
}

// ListByDate retrieves a day's events ordered by time ascending; untimed
// events (empty time) sort first.
func (r *EventRepository) ListByDate(ctx context.Context, date models.DateKey) ([]models.CalendarEvent, error) {
	rows, err := r.DB().QueryContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE date = ? ORDER BY time ASC, id ASC", date,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events for %s: %w", date, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByMonth retrieves every event of the month containing the given key,
// ordered by date then time.
func (r *EventRepository) ListByMonth(ctx context.Context, monthStart models.DateKey) ([]models.CalendarEvent, error) {
	// Date keys are fixed-width, so one month is a simple prefix match.
	prefix := string(monthStart)[:8] + "%"

	rows, err := r.DB().QueryContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE date LIKE ? ORDER BY date ASC, time ASC, id ASC", prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events for month of %s: %w", monthStart, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Delete removes an event by id.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return nil
}

// Counts returns the total number of events and of distinct days with events.
func (r *EventRepository) Counts(ctx context.Context) (events, days int, err error) {
	err = r.DB().QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT date) FROM calendar_events",
	).Scan(&events, &days)
	if err != nil {
		return 0, 0, fmt.Errorf("counting events: %w", err)
	}
	return events, days, nil
}

func scanEvents(rows *sql.Rows) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	for rows.Next() {
		var ev models.CalendarEvent
		if err := rows.Scan(&ev.ID, &ev.Date, &ev.Text, &ev.Time, &ev.Reminder, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
