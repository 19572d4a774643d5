// Package awsclient builds the shared aws.Config used by the S3 and Bedrock clients.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cvassistant/backend/internal/infrastructure/config"
)

// DefaultRegion is used when no region is configured
const DefaultRegion = "us-east-1"

// Load resolves region and credentials. Static keys are used when both parts are
// configured, otherwise the SDK default credential chain applies.
func Load(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if provider, ok := StaticCredentials(cfg); ok {
		opts = append(opts, awsconfig.WithCredentialsProvider(provider))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return awsCfg, nil
}

// StaticCredentials returns a static provider when an access key pair is configured
func StaticCredentials(cfg config.AWSConfig) (credentials.StaticCredentialsProvider, bool) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return credentials.StaticCredentialsProvider{}, false
	}
	return credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken), true
}

// WithoutRetries makes every call on clients built from cfg a single attempt
func WithoutRetries(cfg aws.Config) aws.Config {
	cfg.Retryer = func() aws.Retryer { return aws.NopRetryer{} }
	return cfg
}
