package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/models"
	"github.com/skycharter/booking-backend/internal/notify"
	"github.com/skycharter/booking-backend/pkg/reference"
)

// BookingConfig holds lifecycle timing configuration
type BookingConfig struct {
	HoldTTL         time.Duration // pending reservations older than this are swept
	DefaultCurrency string
	NotifyTimeout   time.Duration // budget for a single async dispatch
}

// DefaultBookingConfig returns default configuration
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		HoldTTL:         15 * time.Minute,
		DefaultCurrency: "USD",
		NotifyTimeout:   5 * time.Second,
	}
}

// BookingService orchestrates the reservation lifecycle:
// create -> quote -> pay -> complete, with cancel reachable until payment.
// It never blocks on external calls while inventory is being mutated; pricing
// is pure and notifications go out after state is committed.
type BookingService struct {
	inventory  ResourceInventory
	store      ReservationStore
	pricer     Pricer
	dispatcher notify.Dispatcher
	config     BookingConfig
	logger     *logrus.Logger
	now        func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	inventory ResourceInventory,
	store ReservationStore,
	pricer Pricer,
	dispatcher notify.Dispatcher,
	config BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		inventory:  inventory,
		store:      store,
		pricer:     pricer,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// ============================================================================
// CREATE REQUEST
// ============================================================================

// CreateRequest validates the request, commits the inventory hold and then
// creates the reservation record. The hold is taken first so a lost race
// leaves no orphan record; if the store write fails afterwards, the hold is
// rolled back before the error surfaces.
func (s *BookingService) CreateRequest(requesterID uuid.UUID, req *models.CreateReservationRequest) (*models.Reservation, error) {
	// 1. Validate request shape
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid resource_id: %w", models.ErrNotFound)
	}

	// 2. Load the resource and check it accepts bookings at all
	resource, err := s.inventory.GetByID(resourceID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if resource == nil {
		return nil, models.ErrNotFound
	}
	if !resource.IsBookable() {
		return nil, models.ErrConflict
	}

	// 3. Capacity guard
	if req.PassengerCount > resource.PassengerCapacity {
		return nil, models.ErrCapacityExceeded
	}
	if resource.Type == models.ResourceTypeFlight && req.SeatCode == nil {
		return nil, fmt.Errorf("seat_code is required for flight bookings")
	}
	if resource.Type == models.ResourceTypeHelicopter && req.SeatCode != nil {
		return nil, fmt.Errorf("seat_code is not applicable to charter bookings")
	}

	// 4. Pre-assign the reservation ID so the hold can reference it
	reservationID := uuid.New()

	// 5. Commit the hold atomically; a concurrent taker wins at most one slot
	if resource.Type == models.ResourceTypeFlight {
		err = s.inventory.HoldSeat(resourceID, *req.SeatCode, reservationID)
	} else {
		err = s.inventory.HoldWindow(resourceID, reservationID, req.StartTime, req.EndTime)
	}
	if err != nil {
		return nil, mapStoreError(err)
	}

	// 6. Create the reservation record; roll the hold back if this fails
	res := &models.Reservation{
		ID:             reservationID,
		Reference:      newReference(resource.Type),
		ResourceID:     resourceID,
		RequesterID:    requesterID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		SeatCode:       req.SeatCode,
		PassengerCount: req.PassengerCount,
		DistanceKm:     req.DistanceKm,
	}
	if err := s.store.Create(res); err != nil {
		if _, rerr := s.inventory.ReleaseHold(reservationID); rerr != nil {
			s.logger.WithError(rerr).WithField("reservation_id", reservationID).
				Error("Failed to roll back hold after store failure")
		}
		return nil, mapStoreError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"reference":      res.Reference,
		"resource_id":    resourceID,
		"requester_id":   requesterID,
		"passengers":     req.PassengerCount,
	}).Info("Reservation created")

	s.dispatch(notify.EventRequestCreated, res)
	return res, nil
}

// ============================================================================
// PROVIDE QUOTE
// ============================================================================

// ProvideQuote prices a pending reservation and attaches the quote,
// transitioning it to quoted
func (s *BookingService) ProvideQuote(reservationID uuid.UUID) (*models.Reservation, error) {
	// 1. Load reservation and resource
	res, err := s.store.GetByID(reservationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if res == nil {
		return nil, models.ErrNotFound
	}

	resource, err := s.inventory.GetByID(res.ResourceID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if resource == nil {
		return nil, models.ErrNotFound
	}

	// 2. Price it. Pure computation, done before any state is touched.
	hours := res.EndTime.Sub(res.StartTime).Hours()
	quote := s.pricer.Quote(resource, res.PassengerCount, hours, res.DistanceKm)

	// 3. Attach via guarded transition pending -> quoted
	updated, err := s.store.AttachQuote(reservationID, quote)
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"amount":         quote.Amount,
		"currency":       quote.Currency,
		"expires_at":     quote.ExpiresAt,
	}).Info("Quote attached")

	s.dispatch(notify.EventQuoted, updated)
	return updated, nil
}

// ============================================================================
// CONFIRM PAYMENT
// ============================================================================

// ConfirmPayment records an externally processed payment and transitions the
// reservation to paid. The amount must match the quote exactly and the quote
// must still be valid; neither failure changes reservation state.
func (s *BookingService) ConfirmPayment(reservationID uuid.UUID, externalRef string, amountPaid float64) (*models.Reservation, error) {
	// 1. Load and guard
	res, err := s.store.GetByID(reservationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if res == nil {
		return nil, models.ErrNotFound
	}
	if res.Quote == nil {
		return nil, models.ErrInvalidTransition
	}

	// 2. Amount and expiry guards
	if amountPaid != res.Quote.Amount {
		return nil, models.ErrAmountMismatch
	}
	if res.Quote.Expired(s.now()) {
		return nil, models.ErrQuoteExpired
	}

	// 3. Guarded transition; of two concurrent payments exactly one wins
	updated, err := s.store.MarkPaid(reservationID, externalRef, s.now())
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"payment_ref":    externalRef,
		"amount":         amountPaid,
	}).Info("Payment recorded")

	s.dispatch(notify.EventPaid, updated)
	return updated, nil
}

// ============================================================================
// CANCEL
// ============================================================================

// Cancel cancels a reservation that has not been paid and releases its hold.
// The guarded store transition decides the single winner under concurrent
// cancels, so the hold is released exactly once. A release failure after the
// transition is logged and healed by the orphan sweep, never surfaced.
func (s *BookingService) Cancel(reservationID uuid.UUID, actor CancelActor) (*models.Reservation, error) {
	// 1. Guarded transition first: only the winner proceeds to release
	updated, err := s.store.Cancel(reservationID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// 2. Release the hold. Idempotent on the inventory side.
	if _, err := s.inventory.ReleaseHold(reservationID); err != nil {
		s.logger.WithError(err).WithField("reservation_id", reservationID).
			Error("Failed to release hold after cancel; orphan sweep will retry")
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"actor":          actor,
	}).Info("Reservation cancelled")

	s.dispatch(notify.EventCancelled, updated)
	return updated, nil
}

// ============================================================================
// COMPLETE
// ============================================================================

// Complete marks a paid reservation as delivered once its window has passed
// and releases the hold. The seat assignment stays on the reservation record
// for audit.
func (s *BookingService) Complete(reservationID uuid.UUID) (*models.Reservation, error) {
	// 1. Load and guard on the service window
	res, err := s.store.GetByID(reservationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if res == nil {
		return nil, models.ErrNotFound
	}
	if !res.ServiceEnded(s.now()) {
		return nil, models.ErrInvalidTransition
	}

	// 2. Guarded transition paid -> completed
	updated, err := s.store.TransitionStatus(reservationID, models.StatusPaid, models.StatusCompleted)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// 3. Free the capacity for future bookings
	if _, err := s.inventory.ReleaseHold(reservationID); err != nil {
		s.logger.WithError(err).WithField("reservation_id", reservationID).
			Error("Failed to release hold after completion; orphan sweep will retry")
	}

	s.logger.WithField("reservation_id", reservationID).Info("Reservation completed")

	s.dispatch(notify.EventCompleted, updated)
	return updated, nil
}

// ============================================================================
// READS
// ============================================================================

// Get retrieves a reservation by ID
func (s *BookingService) Get(reservationID uuid.UUID) (*models.Reservation, error) {
	res, err := s.readWithRetry(func() (*models.Reservation, error) {
		return s.store.GetByID(reservationID)
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, models.ErrNotFound
	}
	return res, nil
}

// ListByRequester retrieves a requester's reservation history
func (s *BookingService) ListByRequester(requesterID uuid.UUID, limit, offset int) ([]*models.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	reservations, err := s.store.GetByRequester(requesterID, limit, offset)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return reservations, nil
}

// ============================================================================
// INTERNAL
// ============================================================================

// readWithRetry retries transient store failures a bounded number of times.
// Only reads go through this; mutations must surface the failure so the
// caller retries the whole operation.
func (s *BookingService) readWithRetry(fn func() (*models.Reservation, error)) (*models.Reservation, error) {
	var res *models.Reservation
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		res, err = fn()
		if err == nil {
			return res, nil
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return nil, mapStoreError(err)
}

// dispatch emits a lifecycle event without blocking the caller. Failures are
// logged; lifecycle state is authoritative regardless.
func (s *BookingService) dispatch(eventType notify.EventType, res *models.Reservation) {
	event := notify.Event{Type: eventType, Reservation: res, OccurredAt: s.now()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()
		if err := s.dispatcher.Notify(ctx, event); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"event_type":     eventType,
				"reservation_id": res.ID,
			}).Warn("Failed to dispatch lifecycle event")
		}
	}()
}

// newReference picks the reference prefix by resource kind
func newReference(t models.ResourceType) string {
	if t == models.ResourceTypeFlight {
		return reference.New(reference.PrefixFlight)
	}
	return reference.New(reference.PrefixCharter)
}

// mapStoreError maps unexpected persistence failures to the transient kind
// while passing taxonomy errors through untouched
func mapStoreError(err error) error {
	for _, kind := range []error{
		models.ErrNotFound,
		models.ErrConflict,
		models.ErrInvalidTransition,
		models.ErrCapacityExceeded,
		models.ErrAmountMismatch,
		models.ErrQuoteExpired,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", models.ErrTransientStore, err)
}
