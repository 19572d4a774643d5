// Package document stores uploaded CVs for the knowledge base and triggers
// knowledge base ingestion.
package document

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cvassistant/backend/internal/domain/document"
	"github.com/cvassistant/backend/internal/domain/shared"
	"github.com/cvassistant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultContentType = "application/octet-stream"
	sidecarContentType = "application/json"
)

// Object metadata written alongside each upload
const (
	MetaOriginalFilename = "original_filename"
	MetaUploadedAt       = "uploaded_at"
)

// ErrUnsupportedFileType is returned for filenames outside the allowed extensions
var ErrUnsupportedFileType = shared.NewInvalidInputError(document.AllowedExtensionsMessage())

// ObjectStore writes objects to the document bucket
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error
	ObjectURL(key string) string
}

// UploadRequest carries one uploaded file
type UploadRequest struct {
	Content     []byte
	Filename    string
	ContentType string
	Category    *string
}

// UploadService stores documents together with their metadata sidecar
type UploadService struct {
	store   ObjectStore
	prefix  string
	metrics *telemetry.AssistantMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploadService creates an UploadService writing keys under prefix
func NewUploadService(store ObjectStore, prefix string, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		store:  store,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// SetMetrics sets the metrics recorder
func (s *UploadService) SetMetrics(metrics *telemetry.AssistantMetrics) {
	s.metrics = metrics
}

// Upload stores the document under its normalized name, then its sidecar.
// The two writes are not atomic: a failed sidecar write leaves the document in place.
// An existing object with the same normalized name is overwritten.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*document.UploadResult, error) {
	category := ""
	if req.Category != nil {
		category = *req.Category
	}
	fileType := strings.ToLower(path.Ext(req.Filename))

	if !document.HasAllowedExtension(req.Filename) {
		s.metrics.RecordUpload(ctx, category, fileType, telemetry.OutcomeError)
		return nil, ErrUnsupportedFileType
	}

	normalized := document.NormalizeFilename(req.Filename)
	key := document.ObjectKey(s.prefix, normalized)

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanUpload,
		telemetry.WithAttribute(telemetry.SpanAttrObjectKey, key),
		telemetry.WithAttribute(telemetry.SpanAttrCategory, category),
	)
	defer span.End()

	result, err := s.write(ctx, req, key, normalized)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordUpload(ctx, category, fileType, telemetry.OutcomeError)
		s.logger.Error("Document upload failed",
			zap.String("key", key),
			zap.String("category", category),
			zap.Error(err),
		)
		return nil, err
	}
	result.Filename = normalized

	s.metrics.RecordUpload(ctx, category, fileType, telemetry.OutcomeSuccess)
	s.logger.Info("Document uploaded",
		zap.String("key", key),
		zap.String("original_filename", req.Filename),
		zap.String("category", category),
		zap.Int("size", len(req.Content)),
	)
	return result, nil
}

func (s *UploadService) write(ctx context.Context, req UploadRequest, key, normalized string) (*document.UploadResult, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	metadata := map[string]string{
		MetaOriginalFilename: normalized,
		MetaUploadedAt:       s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.PutObject(ctx, key, req.Content, contentType, metadata); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	sidecar, err := document.NewSidecar(req.Category).Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata sidecar: %w", err)
	}
	if err := s.store.PutObject(ctx, document.SidecarKey(key), sidecar, sidecarContentType, nil); err != nil {
		return nil, fmt.Errorf("failed to store metadata sidecar: %w", err)
	}

	return &document.UploadResult{
		Key: key,
		URL: s.store.ObjectURL(key),
	}, nil
}
