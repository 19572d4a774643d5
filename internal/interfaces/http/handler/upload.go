package handler

import (
	"context"
	"fmt"
	"io"

	appdocument "github.com/cvassistant/backend/internal/application/document"
	"github.com/cvassistant/backend/internal/domain/document"
	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// UploadService stores documents
type UploadService interface {
	Upload(ctx context.Context, req appdocument.UploadRequest) (*document.UploadResult, error)
}

// UploadHandler serves POST /api/upload
type UploadHandler struct {
	BaseHandler
	service UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload stores a multipart file and its category sidecar
func (h *UploadHandler) Upload(c *gin.Context) {
	var form dto.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.ValidationError(c, err)
		return
	}
	if !document.HasAllowedExtension(form.File.Filename) {
		h.BadRequest(c, document.AllowedExtensionsMessage())
		return
	}

	content, err := readFormFile(form)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	category := form.Category
	result, err := h.service.Upload(c.Request.Context(), appdocument.UploadRequest{
		Content:     content,
		Filename:    form.File.Filename,
		ContentType: form.File.Header.Get("Content-Type"),
		Category:    &category,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewUploadResponse(result))
}

func readFormFile(form dto.UploadForm) ([]byte, error) {
	f, err := form.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return content, nil
}
