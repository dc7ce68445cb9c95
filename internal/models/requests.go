package models

import (
	"errors"
	"time"
)

// CreateReservationRequest is the inbound payload for creating a booking
// request. SeatCode is required for flights and must be absent for
// helicopters. DistanceKm feeds the distance component of the quote.
type CreateReservationRequest struct {
	ResourceID     string    `json:"resource_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	SeatCode       *string   `json:"seat_code,omitempty"`
	PassengerCount int       `json:"passenger_count" binding:"required"`
	DistanceKm     float64   `json:"distance_km"`
}

// Validate checks the request fields beyond what binding covers
func (r *CreateReservationRequest) Validate() error {
	if r.PassengerCount < 1 {
		return errors.New("passenger_count must be at least 1")
	}
	if !r.EndTime.After(r.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	if r.DistanceKm < 0 {
		return errors.New("distance_km must not be negative")
	}
	if r.SeatCode != nil && *r.SeatCode == "" {
		return errors.New("seat_code must not be empty when provided")
	}
	return nil
}

// ConfirmPaymentRequest carries the externally obtained payment reference and
// the amount the requester actually paid.
type ConfirmPaymentRequest struct {
	PaymentRef string  `json:"payment_ref" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}
