package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/config"
	"github.com/skycharter/booking-backend/internal/database"
	"github.com/skycharter/booking-backend/internal/handlers"
	"github.com/skycharter/booking-backend/internal/middleware"
	"github.com/skycharter/booking-backend/internal/notify"
	"github.com/skycharter/booking-backend/internal/services"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SkyCharter Booking Backend")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	resourceRepo := database.NewResourceRepository(db)
	reservationRepo := database.NewReservationRepository(db)

	// Initialize the notification dispatcher; fall back to log-only when no
	// broker is configured
	var dispatcher notify.Dispatcher
	if cfg.Notify.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.Notify.AMQPURL, cfg.Notify.Exchange, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer publisher.Close()
		dispatcher = publisher
		logger.WithField("exchange", cfg.Notify.Exchange).Info("Lifecycle events published to broker")
	} else {
		dispatcher = notify.NewLogDispatcher(logger)
		logger.Info("No broker configured, lifecycle events are log-only")
	}

	// Initialize services
	pricingService := services.NewPricingService(services.PricingConfig{
		PerPassengerSurcharge: cfg.Pricing.PerPassengerSurcharge,
		DistanceRate:          cfg.Pricing.DistanceRate,
		QuoteValidity:         cfg.Booking.QuoteValidity,
	})

	bookingConfig := services.BookingConfig{
		HoldTTL:         cfg.Booking.HoldTTL,
		DefaultCurrency: cfg.Booking.DefaultCurrency,
		NotifyTimeout:   5 * time.Second,
	}
	bookingService := services.NewBookingService(
		resourceRepo,
		reservationRepo,
		pricingService,
		dispatcher,
		bookingConfig,
		logger,
	)

	expirationService := services.NewHoldExpirationService(bookingService, reservationRepo, bookingConfig, logger)
	cronService := services.NewCronService(expirationService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	resourceHandler := handlers.NewResourceHandler(resourceRepo, logger)
	healthHandler := handlers.NewHealthHandler(db)

	// Set up router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Requester-ID"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api/v1")
	{
		// Public catalogue routes
		api.GET("/resources", resourceHandler.ListResources)
		api.GET("/resources/:resource_id", resourceHandler.GetResource)
		api.GET("/resources/:resource_id/seats", resourceHandler.GetSeatMap)

		// Reservation lifecycle routes require a requester identity
		protected := api.Group("")
		protected.Use(middleware.RequireRequester())
		{
			protected.POST("/reservations", bookingHandler.CreateReservation)
			protected.GET("/reservations/:reservation_id", bookingHandler.GetReservation)
			protected.POST("/reservations/:reservation_id/quote", bookingHandler.ProvideQuote)
			protected.POST("/reservations/:reservation_id/payment", bookingHandler.ConfirmPayment)
			protected.POST("/reservations/:reservation_id/cancel", bookingHandler.CancelReservation)
			protected.POST("/reservations/:reservation_id/complete", bookingHandler.CompleteReservation)
			protected.GET("/users/:user_id/reservations", bookingHandler.GetUserReservations)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
