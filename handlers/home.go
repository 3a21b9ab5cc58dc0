package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const livenessMessage = "🚽 Restroom Cleanliness API is running!"

func Home(c *gin.Context) {
	c.String(http.StatusOK, livenessMessage)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type HealthHandler struct {
	detector HealthChecker
	timeout  time.Duration
}

func NewHealthHandler(detector HealthChecker) *HealthHandler {
	return &HealthHandler{detector: detector, timeout: 2 * time.Second}
}

// Health always answers 200; the detector state is informational.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	detector := "up"
	if h.detector == nil || h.detector.CheckHealth(ctx) != nil {
		detector = "down"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"detector": detector,
	})
}
