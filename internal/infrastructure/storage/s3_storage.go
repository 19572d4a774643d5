// Package storage provides the object stores documents are uploaded to and
// presigned download links are issued from.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cvassistant/backend/internal/domain/document"
	infraconfig "github.com/cvassistant/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultPresignExpiration is the lifetime of a presigned download link
const DefaultPresignExpiration = time.Hour

// S3ObjectStorage stores documents in an S3 bucket and presigns GetObject links.
type S3ObjectStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	region            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ObjectStorageOption is a functional option for configuring S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets a custom logger for S3ObjectStorage
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.presignExpiration = d
	}
}

// NewS3ObjectStorage creates an S3ObjectStorage on top of a shared AWS configuration.
func NewS3ObjectStorage(awsCfg aws.Config, cfg *infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	storage := &S3ObjectStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		region:            awsCfg.Region,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.presignExpiration <= 0 {
		storage.presignExpiration = DefaultPresignExpiration
	}

	return storage, nil
}

// PutObject writes body under key with the given content type and user metadata.
func (s *S3ObjectStorage) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(body)),
	)
	return nil
}

// ObjectURL returns the non-presigned URL of key in the configured bucket
func (s *S3ObjectStorage) ObjectURL(key string) string {
	return document.ObjectURL(s.bucket, s.region, key)
}

// PresignURI presigns a GetObject link for an s3://bucket/key locator.
// ok is false for malformed locators and signing failures, which are logged.
func (s *S3ObjectStorage) PresignURI(ctx context.Context, uri string) (string, bool) {
	bucket, key, ok := document.ParseS3URI(uri)
	if !ok || key == "" {
		s.logger.Warn("Cannot presign non-S3 locator", zap.String("uri", uri))
		return "", false
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		s.logger.Warn("Failed to presign download URL", zap.String("uri", uri), zap.Error(err))
		return "", false
	}
	return req.URL, true
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}
