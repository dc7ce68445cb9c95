package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requesterContextKey = "requester_id"

// RequireRequester extracts the requester identity from the X-Requester-ID
// header. Authentication itself happens upstream (gateway); this service only
// needs a stable requester UUID to attribute reservations to.
func RequireRequester() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Requester-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-Requester-ID header"})
			return
		}
		requesterID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-Requester-ID header"})
			return
		}
		c.Set(requesterContextKey, requesterID)
		c.Next()
	}
}

// GetRequesterID returns the requester UUID set by RequireRequester
func GetRequesterID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(requesterContextKey)
	if !exists {
		return uuid.Nil, false
	}
	requesterID, ok := value.(uuid.UUID)
	return requesterID, ok
}
