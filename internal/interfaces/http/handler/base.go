// Package handler implements the HTTP endpoints of the assistant API.
package handler

import (
	"errors"
	"net/http"

	"github.com/cvassistant/backend/internal/domain/shared"
	"github.com/cvassistant/backend/internal/infrastructure/logger"
	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/cvassistant/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, detail string) {
	c.JSON(statusCode, dto.NewErrorResponse(detail))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, detail string) {
	h.Error(c, http.StatusBadRequest, detail)
}

// ValidationError sends a 400 response describing binding failures. A body cut
// off by the body limit is a 413 instead.
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, middleware.BodyTooLargeMessage)
		return
	}
	h.BadRequest(c, middleware.FormatValidationErrors(err))
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, detail string) {
	h.Error(c, http.StatusInternalServerError, detail)
}

// HandleError maps err to a response. Domain errors use the status of their
// code; anything else is a 500 carrying the error text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	h.InternalError(c, err.Error())
}
