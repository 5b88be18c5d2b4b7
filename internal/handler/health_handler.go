package handler

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	shuttingDown *atomic.Bool
}

// NewHealthHandler creates a HealthHandler. shuttingDown is flipped by main
// when shutdown starts so /ready drains traffic first.
func NewHealthHandler(shuttingDown *atomic.Bool) *HealthHandler {
	return &HealthHandler{shuttingDown: shuttingDown}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "up",
		"service": "kitestudios-gateway",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.shuttingDown != nil && h.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
