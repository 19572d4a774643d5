package handler

import (
	"time"

	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RootMessage is returned by GET /
const RootMessage = "CV Assistant API"

// SystemHandler serves liveness endpoints
type SystemHandler struct {
	BaseHandler
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	h.Success(c, dto.MessageResponse{Message: RootMessage})
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, dto.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ping handles GET /api/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, dto.PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
}
