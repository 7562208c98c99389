package websocket

import (
	"encoding/json"
	"time"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeReminderDue  MessageType = "reminder.due"
	TypeDayChanged   MessageType = "calendar.day_changed"
	TypeEventChanged MessageType = "calendar.event_changed"
	TypeNotification MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderDuePayload is the payload for reminder.due events.
type ReminderDuePayload struct {
	EventID     int64          `json:"event_id"`
	Date        models.DateKey `json:"date"`
	Text        string         `json:"text"`
	Time        string         `json:"time"`
	LeadMinutes int            `json:"lead_minutes"`
}

// DayChangedPayload is the payload for calendar.day_changed events,
// emitted at the midnight rollover.
type DayChangedPayload struct {
	Today models.DateKey `json:"today"`
}

// EventChangedPayload is the payload for calendar.event_changed events.
type EventChangedPayload struct {
	Action string               `json:"action"` // "created", "updated" or "deleted"
	Event  models.CalendarEvent `json:"event"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
