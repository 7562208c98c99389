package websocket

import (
	"log"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting typed WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastReminderDue tells clients a reminder's lead time has been reached.
func (b *EventBroadcaster) BroadcastReminderDue(ev models.CalendarEvent, leadMinutes int) {
	payload := ReminderDuePayload{
		EventID:     ev.ID,
		Date:        ev.Date,
		Text:        ev.Text,
		Time:        ev.Time,
		LeadMinutes: leadMinutes,
	}
	b.broadcast(NewMessage(TypeReminderDue, payload))
}

// BroadcastDayChanged tells clients the local calendar day has rolled over.
func (b *EventBroadcaster) BroadcastDayChanged(today models.DateKey) {
	b.broadcast(NewMessage(TypeDayChanged, DayChangedPayload{Today: today}))
}

// BroadcastEventChanged tells clients an event was created, updated or deleted
// so open month views re-render.
func (b *EventBroadcaster) BroadcastEventChanged(action string, ev models.CalendarEvent) {
	b.broadcast(NewMessage(TypeEventChanged, EventChangedPayload{Action: action, Event: ev}))
}

// BroadcastNotification sends a free-form notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}
	b.broadcast(NewMessage(TypeNotification, payload))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
