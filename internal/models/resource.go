package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType represents the kind of bookable resource
type ResourceType string

const (
	ResourceTypeHelicopter ResourceType = "helicopter" // window-scheduled, whole aircraft
	ResourceTypeFlight     ResourceType = "flight"     // seat-mapped, per-seat bookings
)

// HelicopterModel represents a supported helicopter model
type HelicopterModel string

const (
	ModelH125    HelicopterModel = "h125"
	ModelAW139   HelicopterModel = "aw139"
	ModelBell429 HelicopterModel = "bell429"
)

// ResourceStatus represents the operational status of a resource
type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "available"
	ResourceStatusMaintenance ResourceStatus = "maintenance"
	ResourceStatusRetired     ResourceStatus = "retired"
)

// Resource represents a bookable unit of capacity: a helicopter chartered as a
// whole for a time window, or a flight whose individual seats are booked.
type Resource struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	Type              ResourceType   `json:"type" db:"type"`
	Model             *string        `json:"model,omitempty" db:"model"`
	FlightNumber      *string        `json:"flight_number,omitempty" db:"flight_number"`
	Name              string         `json:"name" db:"name"`
	PassengerCapacity int            `json:"passenger_capacity" db:"passenger_capacity"`
	BaggageKg         int            `json:"baggage_kg" db:"baggage_kg"`
	BaseRate          float64        `json:"base_rate" db:"base_rate"`
	MinimumHours      float64        `json:"minimum_hours" db:"minimum_hours"`
	Currency          string         `json:"currency" db:"currency"`
	Status            ResourceStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// IsBookable reports whether the resource accepts new reservations at all.
// Availability for a concrete window or seat is checked by the inventory.
func (r *Resource) IsBookable() bool {
	return r.Status == ResourceStatusAvailable
}

// Seat represents one entry of a flight's seat map
type Seat struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ResourceID    uuid.UUID  `json:"resource_id" db:"resource_id"`
	SeatCode      string     `json:"seat_code" db:"seat_code"`
	Occupied      bool       `json:"occupied" db:"occupied"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty" db:"reservation_id"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Hold represents the inventory-side commitment for a window-scheduled
// resource. Released holds stay in the table for audit.
type Hold struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ResourceID    uuid.UUID  `json:"resource_id" db:"resource_id"`
	ReservationID uuid.UUID  `json:"reservation_id" db:"reservation_id"`
	StartTime     time.Time  `json:"start_time" db:"start_time"`
	EndTime       time.Time  `json:"end_time" db:"end_time"`
	Released      bool       `json:"released" db:"released"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	ReleasedAt    *time.Time `json:"released_at,omitempty" db:"released_at"`
}
