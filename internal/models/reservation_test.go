package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	t.Run("Legal Transitions", func(t *testing.T) {
		assert.True(t, StatusPending.CanTransitionTo(StatusQuoted))
		assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
		assert.True(t, StatusQuoted.CanTransitionTo(StatusConfirmed))
		assert.True(t, StatusQuoted.CanTransitionTo(StatusPaid))
		assert.True(t, StatusQuoted.CanTransitionTo(StatusCancelled))
		assert.True(t, StatusConfirmed.CanTransitionTo(StatusPaid))
		assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
		assert.True(t, StatusPaid.CanTransitionTo(StatusCompleted))
	})

	t.Run("Paid Cannot Be Cancelled Without Refund", func(t *testing.T) {
		assert.False(t, StatusPaid.CanTransitionTo(StatusCancelled))
	})

	t.Run("Terminal States Have No Exits", func(t *testing.T) {
		for _, target := range []ReservationStatus{
			StatusPending, StatusQuoted, StatusConfirmed, StatusPaid, StatusCancelled, StatusCompleted,
		} {
			assert.False(t, StatusCancelled.CanTransitionTo(target))
			assert.False(t, StatusCompleted.CanTransitionTo(target))
		}
	})

	t.Run("No Skipping Backwards", func(t *testing.T) {
		assert.False(t, StatusQuoted.CanTransitionTo(StatusPending))
		assert.False(t, StatusPaid.CanTransitionTo(StatusQuoted))
		assert.False(t, StatusPending.CanTransitionTo(StatusPaid))
	})
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusQuoted.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.True(t, StatusPaid.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
}

func TestQuoteExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	quote := Quote{Amount: 15000, Currency: "USD", ExpiresAt: issued.Add(10 * time.Minute)}

	assert.False(t, quote.Expired(issued.Add(9*time.Minute)))
	// Exactly at expiry the quote is still honoured
	assert.False(t, quote.Expired(issued.Add(10*time.Minute)))
	assert.True(t, quote.Expired(issued.Add(11*time.Minute)))
}

func TestCreateReservationRequestValidate(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	valid := CreateReservationRequest{
		ResourceID:     "0a6a4b52-0a7e-4c43-9f3d-111111111111",
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		PassengerCount: 3,
		DistanceKm:     120,
	}
	assert.NoError(t, valid.Validate())

	t.Run("Zero Passengers", func(t *testing.T) {
		req := valid
		req.PassengerCount = 0
		assert.Error(t, req.Validate())
	})

	t.Run("Window Ends Before It Starts", func(t *testing.T) {
		req := valid
		req.EndTime = req.StartTime.Add(-time.Hour)
		assert.Error(t, req.Validate())
	})

	t.Run("Negative Distance", func(t *testing.T) {
		req := valid
		req.DistanceKm = -1
		assert.Error(t, req.Validate())
	})

	t.Run("Empty Seat Code", func(t *testing.T) {
		req := valid
		empty := ""
		req.SeatCode = &empty
		assert.Error(t, req.Validate())
	})
}
