package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/models"
)

// HoldExpirationService sweeps pending reservations that were never quoted
// within the hold TTL. Expiry goes through the regular Cancel operation so
// every lifecycle invariant applies; the sweep never touches storage directly.
type HoldExpirationService struct {
	booking *BookingService
	store   ReservationStore
	config  BookingConfig
	logger  *logrus.Logger
}

// NewHoldExpirationService creates a new HoldExpirationService
func NewHoldExpirationService(
	booking *BookingService,
	store ReservationStore,
	config BookingConfig,
	logger *logrus.Logger,
) *HoldExpirationService {
	return &HoldExpirationService{
		booking: booking,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// ExpireStaleHolds cancels pending reservations older than the hold TTL and
// releases any holds orphaned by earlier release failures. Returns the number
// of reservations expired.
func (s *HoldExpirationService) ExpireStaleHolds() (int, error) {
	cutoff := s.booking.now().Add(-s.config.HoldTTL)

	stale, err := s.store.GetExpiredPending(cutoff, 100)
	if err != nil {
		return 0, mapStoreError(err)
	}

	expired := 0
	for _, res := range stale {
		if _, err := s.booking.Cancel(res.ID, ActorSystem); err != nil {
			// A concurrent quote or cancel beat the sweep; that is fine
			if errors.Is(err, models.ErrInvalidTransition) {
				continue
			}
			s.logger.WithError(err).WithField("reservation_id", res.ID).
				Error("Failed to expire stale hold")
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired stale holds")
	}

	// Heal holds whose release failed after a terminal transition
	if released, err := s.booking.inventory.ReleaseOrphanedHolds(); err != nil {
		s.logger.WithError(err).Error("Failed to release orphaned holds")
	} else if released > 0 {
		s.logger.WithField("count", released).Info("Released orphaned holds")
	}

	return expired, nil
}
