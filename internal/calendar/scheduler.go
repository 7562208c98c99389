package calendar

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pomtech-site/backend/internal/websocket"
)

// Scheduler owns the engine's two periodic tasks: the reminder scan and
// the midnight rollover. Both run in the engine's timezone and are
// cancelled together by Stop.
type Scheduler struct {
	cron        *cron.Cron
	engine      *Engine
	broadcaster *websocket.EventBroadcaster
	scanSpec    string
}

// NewScheduler creates a scheduler for the engine. scanSpec is a cron
// spec such as "@every 1m"; hub may be nil.
func NewScheduler(engine *Engine, hub *websocket.Hub, scanSpec string) *Scheduler {
	if scanSpec == "" {
		scanSpec = "@every 1m"
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(engine.Location())),
		engine:      engine,
		broadcaster: broadcaster,
		scanSpec:    scanSpec,
	}
}

// Start registers and starts the periodic jobs.
func (s *Scheduler) Start() error {
	log.Println("Starting calendar scheduler...")

	if _, err := s.cron.AddFunc(s.scanSpec, s.scanReminders); err != nil {
		return err
	}

	// Midnight in the engine's timezone: the "today" highlight and the
	// reminder date bucket move to the new day without a page reload.
	if _, err := s.cron.AddFunc("0 0 * * *", s.rollover); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Calendar scheduler started (scan %s, timezone %s)", s.scanSpec, s.engine.Location())
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	log.Println("Stopping calendar scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Calendar scheduler stopped")
}

func (s *Scheduler) scanReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	emitted, err := s.engine.ScanReminders(ctx, time.Now())
	if err != nil {
		log.Printf("Reminder scan failed: %v", err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastNotification("error", "Reminders unavailable",
				"The reminder check failed; upcoming reminders may arrive late.")
		}
		return
	}
	if emitted > 0 {
		log.Printf("Reminder scan emitted %d notification(s)", emitted)
	}
}

func (s *Scheduler) rollover() {
	today := s.engine.Today()
	log.Printf("Midnight rollover, today is now %s", today)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastDayChanged(today)
	}
}
