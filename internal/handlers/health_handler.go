package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skycharter/booking-backend/internal/database"
)

// HealthHandler reports service and database health
type HealthHandler struct {
	db database.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health returns 200 when the service and its database are reachable
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
