package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/cvassistant/backend/internal/domain/document"
)

// MemoryObjectStorage keeps uploads in process memory. It backs local runs
// where no bucket is configured; nothing survives a restart.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated object and download URLs
	BaseURL string
	Bucket  string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is an object held by MemoryObjectStorage
type StoredObject struct {
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage(bucket string) *MemoryObjectStorage {
	if bucket == "" {
		bucket = "local"
	}
	return &MemoryObjectStorage{
		BaseURL: "http://localhost/storage",
		Bucket:  bucket,
		objects: make(map[string]StoredObject),
	}
}

// PutObject stores a copy of body under key
func (m *MemoryObjectStorage) PutObject(_ context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = StoredObject{
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
		Metadata:    metadata,
	}
	return nil
}

// ObjectURL returns the local URL of key
func (m *MemoryObjectStorage) ObjectURL(key string) string {
	return m.BaseURL + "/" + m.Bucket + "/" + key
}

// PresignURI returns a local link for s3:// locators, mimicking an expiring URL
func (m *MemoryObjectStorage) PresignURI(_ context.Context, uri string) (string, bool) {
	bucket, key, ok := document.ParseS3URI(uri)
	if !ok || key == "" {
		return "", false
	}
	expires := time.Now().Add(DefaultPresignExpiration).UTC().Format(time.RFC3339)
	return m.BaseURL + "/" + bucket + "/" + key + "?expires=" + url.QueryEscape(expires), true
}

// Object returns the stored object for key
func (m *MemoryObjectStorage) Object(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
