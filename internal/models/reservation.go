package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"   // resource provisionally held
	StatusQuoted    ReservationStatus = "quoted"    // price quote attached
	StatusConfirmed ReservationStatus = "confirmed" // operator confirmed, awaiting payment
	StatusPaid      ReservationStatus = "paid"      // payment recorded
	StatusCancelled ReservationStatus = "cancelled" // terminal, hold released
	StatusCompleted ReservationStatus = "completed" // terminal, service delivered
)

// legalTransitions is the single source of truth for the status state machine.
// Cancellation from paid requires an explicit refund flow, which is out of
// scope here, so paid only moves to completed.
var legalTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusQuoted, StatusCancelled},
	StatusQuoted:    {StatusConfirmed, StatusPaid, StatusCancelled},
	StatusConfirmed: {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, next := range legalTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the reservation still holds inventory
func (s ReservationStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusQuoted, StatusConfirmed, StatusPaid:
		return true
	}
	return false
}

// IsTerminal reports whether the status can never change again
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PaymentStatus represents the recorded state of an external payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Quote is a priced, time-bounded offer attached to a reservation
type Quote struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the quote is past its validity window
func (q Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// Payment records an externally processed payment. The gateway interaction
// itself lives outside this service; only the reference is stored.
type Payment struct {
	Status      PaymentStatus `json:"status"`
	ExternalRef string        `json:"external_ref"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
}

// Reservation represents a client's claim on a resource, tracked through the
// status lifecycle. SeatCode is set for seat-mapped resources only.
type Reservation struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	Reference      string            `json:"reference" db:"reference"`
	ResourceID     uuid.UUID         `json:"resource_id" db:"resource_id"`
	RequesterID    uuid.UUID         `json:"requester_id" db:"requester_id"`
	StartTime      time.Time         `json:"start_time" db:"start_time"`
	EndTime        time.Time         `json:"end_time" db:"end_time"`
	SeatCode       *string           `json:"seat_code,omitempty" db:"seat_code"`
	PassengerCount int               `json:"passenger_count" db:"passenger_count"`
	DistanceKm     float64           `json:"distance_km" db:"distance_km"`
	Status         ReservationStatus `json:"status" db:"status"`
	Quote          *Quote            `json:"quote,omitempty"`
	Payment        *Payment          `json:"payment,omitempty"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// ServiceEnded reports whether the reserved window has fully passed
func (r *Reservation) ServiceEnded(now time.Time) bool {
	return now.After(r.EndTime)
}
