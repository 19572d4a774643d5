package document

import (
	"encoding/json"
	"time"
)

// SidecarSuffix is appended to an object key to name its metadata sidecar.
// The knowledge base indexer pairs the two objects by this convention.
const SidecarSuffix = ".metadata.json"

// Sidecar is the metadata document the knowledge base reads to learn the category facet
type Sidecar struct {
	MetadataAttributes SidecarAttributes `json:"metadataAttributes"`
}

// SidecarAttributes holds the filterable attributes of an uploaded document.
// A nil Category is written as JSON null.
type SidecarAttributes struct {
	Category *string `json:"category"`
}

// NewSidecar creates the sidecar for the given category
func NewSidecar(category *string) Sidecar {
	return Sidecar{MetadataAttributes: SidecarAttributes{Category: category}}
}

// Marshal encodes the sidecar as JSON
func (s Sidecar) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// ObjectKey returns the storage key for a normalized filename under prefix
func ObjectKey(prefix, normalizedFilename string) string {
	return prefix + normalizedFilename
}

// SidecarKey returns the sidecar key for an object key
func SidecarKey(objectKey string) string {
	return objectKey + SidecarSuffix
}

// UploadResult describes a stored document
type UploadResult struct {
	Key      string
	URL      string
	Filename string
}

// SyncJob describes a knowledge base ingestion job started for a data source
type SyncJob struct {
	KnowledgeBaseID string
	DataSourceID    string
	IngestionJobID  string
	Status          string
	StartedAt       time.Time
}
