package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/storage/models"
)

func TestParseDateKey(t *testing.T) {
	key, err := models.ParseDateKey("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, models.DateKey("2024-06-10"), key)

	_, err = models.ParseDateKey("2024-6-10")
	assert.Error(t, err, "unpadded keys are not canonical")

	_, err = models.ParseDateKey("")
	assert.Error(t, err)

	_, err = models.ParseDateKey("2024-13-01")
	assert.Error(t, err)
}

func TestNewDateKeyPadsComponents(t *testing.T) {
	assert.Equal(t, models.DateKey("2024-06-05"), models.NewDateKey(2024, time.June, 5))
	assert.Equal(t, models.DateKey("2024-12-31"), models.NewDateKey(2024, time.December, 31))
}

func TestDateKeyAddMonths(t *testing.T) {
	key := models.DateKey("2024-06-10")
	assert.Equal(t, models.DateKey("2024-07-10"), key.AddMonths(1))
	assert.Equal(t, models.DateKey("2024-05-10"), key.AddMonths(-1))
	assert.Equal(t, models.DateKey("2025-01-10"), key.AddMonths(7))

	// Day clamps instead of rolling into the next month.
	assert.Equal(t, models.DateKey("2024-02-29"), models.DateKey("2024-01-31").AddMonths(1))
	assert.Equal(t, models.DateKey("2023-02-28"), models.DateKey("2023-01-31").AddMonths(1))
}

func TestReminderLeadMinutes(t *testing.T) {
	lead, ok := models.Reminder("30").LeadMinutes()
	assert.True(t, ok)
	assert.Equal(t, 30, lead)

	_, ok = models.ReminderNone.LeadMinutes()
	assert.False(t, ok)

	_, ok = models.Reminder("").LeadMinutes()
	assert.False(t, ok)
}

func TestScheduledAt(t *testing.T) {
	ev := models.CalendarEvent{Date: "2024-05-10", Time: "14:00"}
	at, ok := ev.ScheduledAt(time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC), at)

	untimed := models.CalendarEvent{Date: "2024-05-10"}
	_, ok = untimed.ScheduledAt(time.UTC)
	assert.False(t, ok)
}
