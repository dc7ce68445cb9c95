// Package notify carries lifecycle events to the external notification
// system. Delivery is fire-and-forget: a failed dispatch is logged and never
// affects reservation state.
package notify

import (
	"context"
	"time"

	"github.com/skycharter/booking-backend/internal/models"
)

// EventType identifies a lifecycle event
type EventType string

const (
	EventRequestCreated EventType = "request_created"
	EventQuoted         EventType = "quoted"
	EventPaid           EventType = "paid"
	EventCancelled      EventType = "cancelled"
	EventCompleted      EventType = "completed"
)

// Event is the payload handed to the notification system. It carries the full
// reservation so consumers can render messages without querying back.
type Event struct {
	Type        EventType           `json:"type"`
	Reservation *models.Reservation `json:"reservation"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// Dispatcher is the outbound contract with the notification system
type Dispatcher interface {
	Notify(ctx context.Context, event Event) error
}
