package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/logging"
	"github.com/Aashish23092/ghost-shift-audit/service"
)

type AuditHandler struct {
	auditService *service.AuditService
	maxFileSize  int64
}

func NewAuditHandler(auditService *service.AuditService, maxFileSize int64) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		maxFileSize:  maxFileSize,
	}
}

// Reconcile handles POST /api/v1/audit/reconcile
func (h *AuditHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	resp, err := h.auditService.Reconcile(c.Request.Context(), &req)
	if err != nil {
		sendDomainError(c, "Failed to reconcile", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Scan handles POST /api/v1/audit/scan
func (h *AuditHandler) Scan(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
		return
	}

	req := &dto.ScanRequest{File: header}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		sendError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds %d bytes", h.maxFileSize), nil)
		return
	}

	f, err := header.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to open upload", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", err)
		return
	}

	logging.FromContext(c.Request.Context()).Info().
		Str("file", header.Filename).
		Int64("size", header.Size).
		Msg("Received sign-in sheet")

	resp, err := h.auditService.Scan(c.Request.Context(), header.Filename, data)
	if err != nil {
		sendDomainError(c, "Failed to scan sheet", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Demo handles GET /api/v1/audit/demo/:scenario
func (h *AuditHandler) Demo(c *gin.Context) {
	resp, err := h.auditService.Demo(c.Request.Context(), c.Param("scenario"))
	if err != nil {
		sendDomainError(c, "Failed to run demo", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
