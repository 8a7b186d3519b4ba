package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/store"
)

type RosterHandler struct {
	roster *store.RosterStore
}

func NewRosterHandler(roster *store.RosterStore) *RosterHandler {
	return &RosterHandler{roster: roster}
}

func (h *RosterHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workers": h.roster.List()})
}

func (h *RosterHandler) Get(c *gin.Context) {
	entry, err := h.roster.Get(c.Param("id"))
	if err != nil {
		sendDomainError(c, "Worker not found", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *RosterHandler) Create(c *gin.Context) {
	var entry dto.RosterEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	added, err := h.roster.Add(entry)
	if err != nil {
		sendDomainError(c, "Failed to add worker", err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *RosterHandler) Update(c *gin.Context) {
	var update dto.RosterUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	updated, err := h.roster.Update(c.Param("id"), update)
	if err != nil {
		sendDomainError(c, "Worker not found", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.roster.Delete(c.Param("id")); err != nil {
		sendDomainError(c, "Worker not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": c.Param("id")})
}
