package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingTransitioned = "booking_transitioned"
	EventBookingRescheduled  = "booking_rescheduled"
	EventBookingDeleted      = "booking_deleted"
	// EventAvailabilityOverride audits an admin bypassing the availability
	// containment check.
	EventAvailabilityOverride = "availability_override"
	EventAttendanceRecorded   = "attendance_recorded"
)

// BookingEventPayload is the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID      string    `json:"booking_id"`
	OrganizationID string    `json:"organization_id"`
	StudentID      string    `json:"student_id"`
	CoachID        string    `json:"coach_id"`
	Date           time.Time `json:"date"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
	Status         string    `json:"status"`
	ActorProfileID string    `json:"actor_profile_id,omitempty"`
	ActorRole      string    `json:"actor_role,omitempty"`
}

// OverridePayload records who bypassed availability for which booking.
type OverridePayload struct {
	BookingID      string `json:"booking_id"`
	OrganizationID string `json:"organization_id"`
	ActorProfileID string `json:"actor_profile_id"`
}

// Event is a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events. Handlers run
// synchronously; the caller decides the concurrency model.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
