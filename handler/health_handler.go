package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/ghost-shift-audit/middleware"
)

type HealthHandler struct {
	limiter       middleware.Limiter
	geminiEnabled bool
}

func NewHealthHandler(limiter middleware.Limiter, geminiEnabled bool) *HealthHandler {
	return &HealthHandler{limiter: limiter, geminiEnabled: geminiEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":         "operational",
		"service":        "Ghost Shift Audit",
		"gemini_enabled": h.geminiEnabled,
	}

	if status, err := middleware.Status(c.Request.Context(), h.limiter, c.ClientIP()); err == nil {
		body["rate_limit"] = status
	}

	c.JSON(http.StatusOK, body)
}

// RateLimit handles GET /api/v1/rate-limit
func (h *HealthHandler) RateLimit(c *gin.Context) {
	status, err := middleware.Status(c.Request.Context(), h.limiter, c.ClientIP())
	if err != nil {
		sendError(c, http.StatusServiceUnavailable, "RATE_LIMIT_UNAVAILABLE", "Rate limiter unavailable", err)
		return
	}
	c.JSON(http.StatusOK, status)
}
