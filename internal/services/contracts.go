package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/skycharter/booking-backend/internal/models"
)

// ResourceInventory tracks availability of bookable resources and owns the
// atomic check-and-commit for holds. Implemented by database.ResourceRepository.
type ResourceInventory interface {
	GetByID(id uuid.UUID) (*models.Resource, error)
	List(resourceType string) ([]*models.Resource, error)
	HoldWindow(resourceID, reservationID uuid.UUID, start, end time.Time) error
	HoldSeat(resourceID uuid.UUID, seatCode string, reservationID uuid.UUID) error
	ReleaseHold(reservationID uuid.UUID) (int, error)
	ReleaseOrphanedHolds() (int, error)
	SeatMap(resourceID uuid.UUID) ([]models.Seat, error)
}

// ReservationStore persists reservations and owns the compare-and-swap status
// transitions. Implemented by database.ReservationRepository.
type ReservationStore interface {
	Create(res *models.Reservation) error
	GetByID(id uuid.UUID) (*models.Reservation, error)
	GetByRequester(requesterID uuid.UUID, limit, offset int) ([]*models.Reservation, error)
	GetActiveByResource(resourceID uuid.UUID) ([]*models.Reservation, error)
	GetExpiredPending(cutoff time.Time, limit int) ([]*models.Reservation, error)
	TransitionStatus(id uuid.UUID, from, to models.ReservationStatus) (*models.Reservation, error)
	AttachQuote(id uuid.UUID, quote models.Quote) (*models.Reservation, error)
	MarkPaid(id uuid.UUID, externalRef string, paidAt time.Time) (*models.Reservation, error)
	Cancel(id uuid.UUID) (*models.Reservation, error)
}

// Pricer produces a quote for a resource and request attributes
type Pricer interface {
	Quote(resource *models.Resource, passengers int, hours, distanceKm float64) models.Quote
}

// CancelActor identifies who triggered a cancellation
type CancelActor string

const (
	ActorRequester CancelActor = "requester"
	ActorAdmin     CancelActor = "admin"
	ActorSystem    CancelActor = "system" // hold expiry sweep
)
