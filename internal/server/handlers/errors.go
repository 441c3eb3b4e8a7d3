package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/repository/settings"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/attachments"
	"github.com/meyvali/backoffice/internal/service/records"
)

// Failure reasons reported to clients.
const (
	ReasonStorageUnavailable = "storage_unavailable"
	ReasonSheetNotFound      = "sheet_not_found"
	ReasonRecordNotFound     = "record_not_found"
	ReasonInvalidRequest     = "invalid_request"
	ReasonPayloadTooLarge    = "payload_too_large"
	ReasonInternal           = "internal_error"
)

// classify maps a service error to its HTTP status and reason code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, workbook.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ReasonStorageUnavailable
	case errors.Is(err, workbook.ErrSheetNotFound):
		return http.StatusInternalServerError, ReasonSheetNotFound
	case errors.Is(err, workbook.ErrRecordNotFound),
		errors.Is(err, settings.ErrColumnNotFound),
		errors.Is(err, attachments.ErrAttachmentNotFound):
		return http.StatusNotFound, ReasonRecordNotFound
	case errors.Is(err, records.ErrInvalidRecord),
		errors.Is(err, records.ErrUnknownCategory),
		errors.Is(err, settings.ErrEmptyCategory),
		errors.Is(err, settings.ErrInvalidColumn),
		errors.Is(err, workbook.ErrInvalidWorkbook),
		errors.Is(err, attachments.ErrInvalidFileName):
		return http.StatusBadRequest, ReasonInvalidRequest
	default:
		return http.StatusInternalServerError, ReasonInternal
	}
}

func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, reason := classify(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("reason", reason),
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": "operation failed", "reason": reason})
}

// badRequest rejects a request whose body could not be read or bound. A body
// cut off by the router's size limit is reported as 413.
func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid request", zap.String("op", op), zap.Error(err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "operation failed", "reason": ReasonPayloadTooLarge})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operation failed", "reason": ReasonInvalidRequest})
}

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"
