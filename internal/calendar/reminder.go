package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/storage/models"
	"github.com/pomtech-site/backend/internal/websocket"
)

// Scanner walks the current day's events and pushes a notification for
// each one whose reminder lead time has been reached. Ids notified once
// stay silent until the process restarts.
type Scanner struct {
	repo        *storage.EventRepository
	loc         *time.Location
	broadcaster *websocket.EventBroadcaster

	mu       sync.Mutex
	notified map[int64]struct{}
}

func newScanner(repo *storage.EventRepository, loc *time.Location, broadcaster *websocket.EventBroadcaster) *Scanner {
	return &Scanner{
		repo:        repo,
		loc:         loc,
		broadcaster: broadcaster,
		notified:    make(map[int64]struct{}),
	}
}

// Scan runs one pass against the given instant and returns how many
// notifications were emitted. Calling it twice with the same now is safe:
// an already-notified id is skipped.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.loc)
	events, err := s.repo.ListByDate(ctx, models.DateKeyOf(now))
	if err != nil {
		return 0, err
	}

	emitted := 0
	for _, ev := range events {
		lead, ok := ev.Reminder.LeadMinutes()
		if !ok {
			continue
		}
		at, ok := ev.ScheduledAt(s.loc)
		if !ok {
			continue
		}
		// An event whose time has already passed gets no late reminder.
		if now.After(at) {
			continue
		}

		notifyAt := at.Add(-time.Duration(lead) * time.Minute)
		if now.Before(notifyAt) {
			continue
		}

		if !s.markNotified(ev.ID) {
			continue
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastReminderDue(ev, lead)
		}
		emitted++
	}

	return emitted, nil
}

// ClearNotified forgets an id, making it eligible for a fresh notification.
func (s *Scanner) ClearNotified(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notified, id)
}

// markNotified records the id, returning false when it was already set.
func (s *Scanner) markNotified(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[id]; seen {
		return false
	}
	s.notified[id] = struct{}{}
	return true
}
