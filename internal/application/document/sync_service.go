package document

import (
	"context"

	"github.com/cvassistant/backend/internal/domain/document"
	"github.com/cvassistant/backend/internal/domain/shared"
	"github.com/cvassistant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrSyncNotConfigured is returned when no knowledge base or data source is known
var ErrSyncNotConfigured = shared.NewInvalidInputError("Knowledge base sync is not configured: knowledge base id and data source id are required")

// Syncer starts knowledge base ingestion jobs
type Syncer interface {
	StartSync(ctx context.Context, knowledgeBaseID, dataSourceID string) (*document.SyncJob, error)
}

// SyncService re-indexes the document bucket into the knowledge base
type SyncService struct {
	syncer              Syncer
	knowledgeBaseID     string
	defaultDataSourceID string
	logger              *zap.Logger
}

// NewSyncService creates a SyncService. defaultDataSourceID is used when a
// request names no data source.
func NewSyncService(syncer Syncer, knowledgeBaseID, defaultDataSourceID string, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		syncer:              syncer,
		knowledgeBaseID:     knowledgeBaseID,
		defaultDataSourceID: defaultDataSourceID,
		logger:              logger,
	}
}

// Sync starts an ingestion job for dataSourceID, or the default data source when empty
func (s *SyncService) Sync(ctx context.Context, dataSourceID string) (*document.SyncJob, error) {
	if dataSourceID == "" {
		dataSourceID = s.defaultDataSourceID
	}
	if s.syncer == nil || s.knowledgeBaseID == "" || dataSourceID == "" {
		return nil, ErrSyncNotConfigured
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSync,
		telemetry.WithAttribute(telemetry.SpanAttrDataSource, dataSourceID),
	)
	defer span.End()

	job, err := s.syncer.StartSync(ctx, s.knowledgeBaseID, dataSourceID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Knowledge base sync failed",
			zap.String("knowledge_base_id", s.knowledgeBaseID),
			zap.String("data_source_id", dataSourceID),
			zap.Error(err),
		)
		return nil, err
	}
	return job, nil
}
