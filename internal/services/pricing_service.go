package services

import (
	"time"

	"github.com/skycharter/booking-backend/internal/models"
)

// PricingConfig holds the explicit, named pricing inputs. There are no hidden
// pricing tables beyond the per-resource base rate.
type PricingConfig struct {
	PerPassengerSurcharge float64
	DistanceRate          float64       // per kilometre
	QuoteValidity         time.Duration // quotes are not indefinitely valid
}

// DefaultPricingConfig returns default configuration
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		PerPassengerSurcharge: 100,
		DistanceRate:          5,
		QuoteValidity:         10 * time.Minute,
	}
}

// PricingService computes deterministic quotes. Pure aside from reading the
// resource's current base rate and the injected clock.
type PricingService struct {
	config PricingConfig
	now    func() time.Time
}

// NewPricingService creates a new PricingService
func NewPricingService(config PricingConfig) *PricingService {
	return &PricingService{config: config, now: time.Now}
}

// Quote computes amount = baseRate * max(hours, minimumHours)
// + perPassengerSurcharge * passengers + distanceRate * distanceKm.
// Expiry is now + the configured validity window.
func (s *PricingService) Quote(resource *models.Resource, passengers int, hours, distanceKm float64) models.Quote {
	billedHours := hours
	if billedHours < resource.MinimumHours {
		billedHours = resource.MinimumHours
	}

	amount := resource.BaseRate*billedHours +
		s.config.PerPassengerSurcharge*float64(passengers) +
		s.config.DistanceRate*distanceKm

	return models.Quote{
		Amount:    amount,
		Currency:  resource.Currency,
		ExpiresAt: s.now().Add(s.config.QuoteValidity),
	}
}
