package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skycharter/booking-backend/internal/models"
	"github.com/skycharter/booking-backend/internal/services"
)

// ResourceHandler handles the resource catalogue endpoints
type ResourceHandler struct {
	inventory services.ResourceInventory
	logger    *logrus.Logger
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(inventory services.ResourceInventory, logger *logrus.Logger) *ResourceHandler {
	return &ResourceHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// ListResources returns the bookable catalogue, optionally filtered by type
// GET /api/v1/resources?type=helicopter|flight
func (h *ResourceHandler) ListResources(c *gin.Context) {
	resourceType := c.Query("type")
	if resourceType != "" &&
		resourceType != string(models.ResourceTypeHelicopter) &&
		resourceType != string(models.ResourceTypeFlight) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown resource type"})
		return
	}

	resources, err := h.inventory.List(resourceType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list resources")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// GetResource returns a single resource
// GET /api/v1/resources/:resource_id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("resource_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource_id"})
		return
	}

	resource, err := h.inventory.GetByID(resourceID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get resource")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	if resource == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	c.JSON(http.StatusOK, resource)
}

// GetSeatMap returns the seat map of a seat-mapped resource
// GET /api/v1/resources/:resource_id/seats
func (h *ResourceHandler) GetSeatMap(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("resource_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource_id"})
		return
	}

	resource, err := h.inventory.GetByID(resourceID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get resource")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	if resource == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	if resource.Type != models.ResourceTypeFlight {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource has no seat map"})
		return
	}

	seats, err := h.inventory.SeatMap(resourceID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get seat map")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resource_id": resourceID, "seats": seats})
}
