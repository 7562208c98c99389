package calendar_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/calendar"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/websocket"
)

func TestSchedulerStartStop(t *testing.T) {
	engine := newTestEngine(t)

	scheduler := calendar.NewScheduler(engine, nil, "@every 1m")
	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	engine := newTestEngine(t)

	scheduler := calendar.NewScheduler(engine, nil, "every blue moon")
	assert.Error(t, scheduler.Start())
}

func TestScanFailureBroadcastsNotification(t *testing.T) {
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, storage.RunMigrations(db))

	hub := websocket.NewHub()
	go hub.Run()
	client := websocket.NewClient(hub)
	hub.Register(client)

	engine := calendar.NewEngine(storage.NewEventRepository(db), time.UTC, "sunday", hub)
	scheduler := calendar.NewScheduler(engine, hub, "@every 10ms")
	require.NoError(t, scheduler.Start())
	t.Cleanup(scheduler.Stop)

	// Closing the database makes every scan fail.
	require.NoError(t, db.Close())

	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-client.Send():
			if strings.Contains(string(msg), `"type":"notification"`) {
				return
			}
		case <-deadline:
			t.Fatal("no notification broadcast after scan failures")
		}
	}
}
