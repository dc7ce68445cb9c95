package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/config"
	"github.com/skycharter/booking-backend/internal/database"
	"github.com/skycharter/booking-backend/internal/models"
	"github.com/skycharter/booking-backend/internal/notify"
	"github.com/skycharter/booking-backend/internal/services"
	"github.com/skycharter/booking-backend/pkg/reference"
)

// Runs the booking lifecycle end to end against a real database. Intended for
// a local or staging environment with the seed catalogue loaded.
func main() {
	fmt.Printf("🧪 SkyCharter Booking Lifecycle Integration Test\n\n")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Database connected")
	fmt.Printf("✅ Configuration loaded\n\n")

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	inventory := database.NewResourceRepository(db)
	store := database.NewReservationRepository(db)
	pricer := services.NewPricingService(services.PricingConfig{
		PerPassengerSurcharge: cfg.Pricing.PerPassengerSurcharge,
		DistanceRate:          cfg.Pricing.DistanceRate,
		QuoteValidity:         cfg.Booking.QuoteValidity,
	})
	booking := services.NewBookingService(
		inventory, store, pricer, notify.NewLogDispatcher(logger),
		services.DefaultBookingConfig(), logger,
	)

	// Test 1: Reference Generator
	testReferences()

	// Test 2: Pricing Engine
	testPricing(pricer)

	// Test 3: Full Lifecycle
	testLifecycle(booking, inventory)

	fmt.Println("\n✅ All integration tests completed successfully!")
}

func testReferences() {
	fmt.Println("🔖 Testing Reference Generator")
	fmt.Println("----------------------------")
	fmt.Printf("  Charter: %s\n", reference.New(reference.PrefixCharter))
	fmt.Printf("  Flight:  %s\n\n", reference.New(reference.PrefixFlight))
}

func testPricing(pricer *services.PricingService) {
	fmt.Println("💰 Testing Pricing Engine")
	fmt.Println("----------------------------")

	h125 := &models.Resource{BaseRate: 1500, MinimumHours: 1, Currency: "USD"}
	aw139 := &models.Resource{BaseRate: 3000, MinimumHours: 2, Currency: "USD"}

	quote := pricer.Quote(h125, 3, 2, 120)
	fmt.Printf("  H125, 2h, 3 pax, 120km:  %.2f %s\n", quote.Amount, quote.Currency)

	quote = pricer.Quote(aw139, 1, 0.5, 0)
	fmt.Printf("  AW139, 30min (2h floor): %.2f %s\n\n", quote.Amount, quote.Currency)
}

func testLifecycle(booking *services.BookingService, inventory *database.ResourceRepository) {
	fmt.Println("🚁 Testing Booking Lifecycle")
	fmt.Println("----------------------------")

	resources, err := inventory.List(string(models.ResourceTypeHelicopter))
	if err != nil {
		log.Fatalf("❌ Failed to list resources: %v", err)
	}
	var heli *models.Resource
	for _, r := range resources {
		if r.IsBookable() {
			heli = r
			break
		}
	}
	if heli == nil {
		log.Fatal("❌ No bookable helicopter in the catalogue; run migrations first")
	}
	fmt.Printf("  Using resource: %s\n", heli.Name)

	requesterID := uuid.New()
	start := time.Now().Add(72 * time.Hour)
	req := &models.CreateReservationRequest{
		ResourceID:     heli.ID.String(),
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		PassengerCount: 2,
		DistanceKm:     80,
	}

	res, err := booking.CreateRequest(requesterID, req)
	if err != nil {
		log.Fatalf("❌ Failed to create reservation: %v", err)
	}
	fmt.Printf("  ✅ Created %s (%s)\n", res.Reference, res.Status)

	res, err = booking.ProvideQuote(res.ID)
	if err != nil {
		log.Fatalf("❌ Failed to quote: %v", err)
	}
	fmt.Printf("  ✅ Quoted %.2f %s, valid until %s\n",
		res.Quote.Amount, res.Quote.Currency, res.Quote.ExpiresAt.Format(time.RFC3339))

	res, err = booking.ConfirmPayment(res.ID, "smoke-"+uuid.New().String()[:8], res.Quote.Amount)
	if err != nil {
		log.Fatalf("❌ Failed to record payment: %v", err)
	}
	fmt.Printf("  ✅ Paid (%s)\n", res.Status)

	// A paid reservation must refuse cancellation
	if _, err := booking.Cancel(res.ID, services.ActorAdmin); !errors.Is(err, models.ErrInvalidTransition) {
		log.Fatalf("❌ Expected invalid transition cancelling a paid reservation, got: %v", err)
	}
	fmt.Println("  ✅ Cancel after payment correctly rejected")

	// Second run of this tool needs the window back, so cancel a fresh one
	other, err := booking.CreateRequest(requesterID, &models.CreateReservationRequest{
		ResourceID:     heli.ID.String(),
		StartTime:      start.Add(6 * time.Hour),
		EndTime:        start.Add(8 * time.Hour),
		PassengerCount: 1,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create second reservation: %v", err)
	}
	cancelled, err := booking.Cancel(other.ID, services.ActorRequester)
	if err != nil {
		log.Fatalf("❌ Failed to cancel: %v", err)
	}
	fmt.Printf("  ✅ Cancelled %s (%s)\n", cancelled.Reference, cancelled.Status)
}
