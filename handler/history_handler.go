package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/ghost-shift-audit/store"
)

type HistoryHandler struct {
	history *store.HistoryStore
}

func NewHistoryHandler(history *store.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(c *gin.Context) {
	audits, err := h.history.List(c.Request.Context())
	if err != nil {
		sendDomainError(c, "Failed to load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": audits})
}

// Get handles GET /api/v1/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	rec, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendDomainError(c, "Audit not found", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
