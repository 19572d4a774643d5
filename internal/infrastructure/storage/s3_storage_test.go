package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cvassistant/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testAWSConfig(endpoint string) aws.Config {
	cfg := aws.Config{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		Retryer:     func() aws.Retryer { return aws.NopRetryer{} },
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg
}

type capturedRequest struct {
	method      string
	path        string
	contentType string
	metadata    string
	body        string
}

func newFakeS3(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			metadata:    r.Header.Get("X-Amz-Meta-Original_filename"),
			body:        string(body),
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	_, err := NewS3ObjectStorage(testAWSConfig(""), nil)
	assert.EqualError(t, err, "storage configuration is required")

	_, err = NewS3ObjectStorage(testAWSConfig(""), &config.StorageConfig{})
	assert.EqualError(t, err, "storage bucket is required")
}

func TestS3ObjectStorageOptions(t *testing.T) {
	cfg := &config.StorageConfig{Bucket: "cv-bucket"}

	s, err := NewS3ObjectStorage(testAWSConfig(""), cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultPresignExpiration, s.presignExpiration)
	assert.Equal(t, "cv-bucket", s.Bucket())

	logger := zaptest.NewLogger(t)
	s, err = NewS3ObjectStorage(testAWSConfig(""), cfg, WithLogger(logger), WithPresignExpiration(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, s.presignExpiration)
	assert.Same(t, logger, s.logger)
}

func TestS3ObjectStorage_ObjectURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testAWSConfig(""), &config.StorageConfig{Bucket: "cv-bucket"})
	require.NoError(t, err)

	assert.Equal(t, "https://cv-bucket.s3.eu-west-1.amazonaws.com/uploads/dev/my_resume.pdf", s.ObjectURL("uploads/dev/my_resume.pdf"))
}

func TestS3ObjectStorage_PutObject(t *testing.T) {
	srv, captured := newFakeS3(t, http.StatusOK)
	s, err := NewS3ObjectStorage(testAWSConfig(srv.URL), &config.StorageConfig{Bucket: "cv-bucket", UsePathStyle: true})
	require.NoError(t, err)

	err = s.PutObject(context.Background(), "uploads/dev/my_resume.pdf", []byte("%PDF-1.4 resume"), "application/pdf",
		map[string]string{"original_filename": "my_resume.pdf"})
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/cv-bucket/uploads/dev/my_resume.pdf", req.path)
	assert.Equal(t, "application/pdf", req.contentType)
	assert.Equal(t, "my_resume.pdf", req.metadata)
	assert.Contains(t, req.body, "%PDF-1.4 resume")
}

func TestS3ObjectStorage_PutObject_Errors(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)
	s, err := NewS3ObjectStorage(testAWSConfig(srv.URL), &config.StorageConfig{Bucket: "cv-bucket", UsePathStyle: true})
	require.NoError(t, err)

	err = s.PutObject(context.Background(), "", nil, "text/plain", nil)
	assert.EqualError(t, err, "storage key is required")

	err = s.PutObject(context.Background(), "uploads/dev/cv.txt", []byte("x"), "text/plain", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploads/dev/cv.txt")
}

func TestS3ObjectStorage_PresignURI(t *testing.T) {
	s, err := NewS3ObjectStorage(testAWSConfig(""), &config.StorageConfig{Bucket: "cv-bucket"}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("signs the bucket named in the locator", func(t *testing.T) {
		url, ok := s.PresignURI(ctx, "s3://other-bucket/path/to/cv1.pdf")
		require.True(t, ok)
		assert.Contains(t, url, "other-bucket")
		assert.Contains(t, url, "/path/to/cv1.pdf")
		assert.Contains(t, url, "X-Amz-Expires=3600")
		assert.Contains(t, url, "X-Amz-Signature=")
	})

	tests := []string{
		"https://example.com/cv.pdf",
		"s3:///cv.pdf",
		"s3://bucket-only",
		"",
	}
	for _, uri := range tests {
		t.Run("rejects "+uri, func(t *testing.T) {
			url, ok := s.PresignURI(ctx, uri)
			assert.False(t, ok)
			assert.Empty(t, url)
		})
	}
}
