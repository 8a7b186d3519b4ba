package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/logging"
	"github.com/Aashish23092/ghost-shift-audit/service"
	"github.com/Aashish23092/ghost-shift-audit/store"
)

// sendError sends a structured error response. Client errors carry err's
// message; server errors only carry message.
func sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		level := zerolog.WarnLevel
		if statusCode >= http.StatusInternalServerError {
			// server-side detail stays in the log
			level = zerolog.ErrorLevel
		} else {
			errorMsg = err.Error()
		}
		logging.FromContext(c.Request.Context()).WithLevel(level).Err(err).Int("status", statusCode).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrUnknownScenario):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrUnreadableSheet):
		return http.StatusUnprocessableEntity, "UNREADABLE_SHEET"
	default:
		return http.StatusInternalServerError, "AUDIT_FAILED"
	}
}

func sendDomainError(c *gin.Context, message string, err error) {
	status, code := statusFor(err)
	sendError(c, status, code, message, err)
}
