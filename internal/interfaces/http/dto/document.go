package dto

import (
	"mime/multipart"
	"time"

	"github.com/cvassistant/backend/internal/domain/document"
)

// UploadSuccessMessage is returned for every stored document
const UploadSuccessMessage = "File uploaded successfully with metadata JSON"

// UploadForm is the multipart form of POST /api/upload
type UploadForm struct {
	File     *multipart.FileHeader `form:"file" binding:"required"`
	Category string                `form:"category" binding:"required"`
}

// UploadResponse describes a stored document
type UploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// NewUploadResponse converts an upload result
func NewUploadResponse(result *document.UploadResult) UploadResponse {
	return UploadResponse{
		Message:  UploadSuccessMessage,
		FileID:   result.Key,
		URL:      result.URL,
		Filename: result.Filename,
	}
}

// CategoriesResponse lists the categories offered to clients
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// SyncRequest is the optional body of POST /api/sync
type SyncRequest struct {
	DataSourceID string `json:"data_source_id"`
}

// SyncResponse describes a started ingestion job
type SyncResponse struct {
	IngestionJobID  string    `json:"ingestion_job_id"`
	Status          string    `json:"status"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	DataSourceID    string    `json:"data_source_id"`
	StartedAt       time.Time `json:"started_at"`
}

// NewSyncResponse converts a sync job
func NewSyncResponse(job *document.SyncJob) SyncResponse {
	return SyncResponse{
		IngestionJobID:  job.IngestionJobID,
		Status:          job.Status,
		KnowledgeBaseID: job.KnowledgeBaseID,
		DataSourceID:    job.DataSourceID,
		StartedAt:       job.StartedAt,
	}
}
