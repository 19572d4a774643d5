package handler

import (
	"context"
	"errors"
	"io"

	"github.com/cvassistant/backend/internal/domain/document"
	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SyncService starts knowledge base ingestion
type SyncService interface {
	Sync(ctx context.Context, dataSourceID string) (*document.SyncJob, error)
}

// SyncHandler serves POST /api/sync
type SyncHandler struct {
	BaseHandler
	service SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Sync starts an ingestion job. The body is optional.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ValidationError(c, err)
		return
	}

	job, err := h.service.Sync(c.Request.Context(), req.DataSourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncResponse(job))
}
