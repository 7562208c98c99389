package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/storage/models"
)

func TestScanRemindersLeadTime(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date:     "2024-05-10",
		Text:     "client call",
		Time:     "14:00",
		Reminder: "30",
	})
	require.NoError(t, err)

	// One minute before the lead window opens: nothing fires.
	emitted, err := engine.ScanReminders(ctx, time.Date(2024, 5, 10, 13, 29, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, emitted)

	// Inside the window: exactly one notification.
	emitted, err = engine.ScanReminders(ctx, time.Date(2024, 5, 10, 13, 31, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
}

func TestScanRemindersIdempotent(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date:     "2024-05-10",
		Text:     "client call",
		Time:     "14:00",
		Reminder: "30",
	})
	require.NoError(t, err)

	now := time.Date(2024, 5, 10, 13, 31, 0, 0, time.UTC)

	emitted, err := engine.ScanReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	// The same instant again: the id was already notified this session.
	emitted, err = engine.ScanReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, emitted)
}

func TestScanRemindersSkipsPastAndUnqualified(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date: "2024-05-10", Text: "no reminder", Time: "18:00",
	})
	require.NoError(t, err)
	_, err = engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date: "2024-05-10", Text: "untimed",
	})
	require.NoError(t, err)
	_, err = engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date: "2024-05-10", Text: "already over", Time: "08:00", Reminder: "10",
	})
	require.NoError(t, err)
	_, err = engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date: "2024-05-11", Text: "tomorrow", Time: "09:00", Reminder: "60",
	})
	require.NoError(t, err)

	// Midday: the past event gets no late reminder, tomorrow's event is
	// outside today's date bucket, the rest have no reminder to fire.
	emitted, err := engine.ScanReminders(ctx, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, emitted)
}

func TestDeleteClearsNotifiedMark(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	ev, err := engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		Date:     "2024-05-10",
		Text:     "client call",
		Time:     "14:00",
		Reminder: "30",
	})
	require.NoError(t, err)

	now := time.Date(2024, 5, 10, 13, 31, 0, 0, time.UTC)
	emitted, err := engine.ScanReminders(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, emitted)

	require.NoError(t, engine.DeleteEvent(ctx, ev.ID))

	// A recreated event under the same id is eligible again.
	_, err = engine.CreateOrUpdateEvent(ctx, models.CalendarEvent{
		ID:       ev.ID,
		Date:     "2024-05-10",
		Text:     "client call, take two",
		Time:     "14:00",
		Reminder: "30",
	})
	require.NoError(t, err)

	emitted, err = engine.ScanReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
}
