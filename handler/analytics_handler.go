package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/ghost-shift-audit/store"
)

type AnalyticsHandler struct {
	analytics *store.AnalyticsStore
	secret    string
}

func NewAnalyticsHandler(analytics *store.AnalyticsStore, secret string) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, secret: secret}
}

// Track handles POST /api/v1/track
func (h *AnalyticsHandler) Track(c *gin.Context) {
	if err := h.analytics.TrackVisit(c.Request.Context(), c.ClientIP(), c.Request.UserAgent()); err != nil {
		sendDomainError(c, "Failed to track visit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Summary handles GET /api/v1/analytics/:secret. A wrong secret looks like
// a missing route.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) != 1 {
		sendError(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		sendDomainError(c, "Failed to load analytics", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
