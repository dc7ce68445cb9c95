package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/middleware"
	"github.com/skycharter/booking-backend/internal/models"
	"github.com/skycharter/booking-backend/internal/services"
)

// BookingHandler handles the reservation lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// CreateReservation creates a booking request and takes the inventory hold
// POST /api/v1/reservations
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	requesterID, ok := middleware.GetRequesterID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "requester not identified"})
		return
	}

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	reservation, err := h.bookingService.CreateRequest(requesterID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// ProvideQuote prices a pending reservation
// POST /api/v1/reservations/:reservation_id/quote
func (h *BookingHandler) ProvideQuote(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookingService.ProvideQuote(reservationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ConfirmPayment records an external payment against the quote
// POST /api/v1/reservations/:reservation_id/payment
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	reservation, err := h.bookingService.ConfirmPayment(reservationID, req.PaymentRef, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CancelReservation cancels an unpaid reservation and releases its hold
// POST /api/v1/reservations/:reservation_id/cancel
func (h *BookingHandler) CancelReservation(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookingService.Cancel(reservationID, services.ActorRequester)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CompleteReservation marks a paid reservation as delivered
// POST /api/v1/reservations/:reservation_id/complete
func (h *BookingHandler) CompleteReservation(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookingService.Complete(reservationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// GetReservation returns a single reservation
// GET /api/v1/reservations/:reservation_id
func (h *BookingHandler) GetReservation(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookingService.Get(reservationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// GetUserReservations returns a requester's reservation history
// GET /api/v1/users/:user_id/reservations
func (h *BookingHandler) GetUserReservations(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reservations, err := h.bookingService.ListByRequester(userID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *BookingHandler) reservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("reservation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation_id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps lifecycle errors to HTTP statuses. Conflicts and guard
// violations are 409 so clients know to refetch; expired quotes carry a code
// so clients re-quote instead of retrying payment.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrQuoteExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "quote_expired"})
	case errors.Is(err, models.ErrTransientStore):
		h.logger.WithError(err).Error("Store failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, retry the operation"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
