// Package config loads service configuration from config.toml, an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. CVA_APP_PORT
const EnvPrefix = "CVA"

// DefaultCategories are the roles offered when none are configured
var DefaultCategories = []string{"Data Scientist", "Product Manager", "Security Engineer", "Legal Counsel"}

// Config holds all application configuration
type Config struct {
	App           AppConfig
	AWS           AWSConfig
	Storage       StorageConfig
	Bedrock       BedrockConfig
	KnowledgeBase KnowledgeBaseConfig
	Categories    []string
	Log           LogConfig
	HTTP          HTTPConfig
	Telemetry     TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Host string
	Port string
}

// Address returns the listen address
func (a AppConfig) Address() string {
	return net.JoinHostPort(a.Host, a.Port)
}

// IsProduction reports whether the service runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// AWSConfig holds credentials and region shared by all AWS clients.
// Empty credentials fall back to the SDK default chain.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string // optional override, e.g. a local S3-compatible server
}

// StorageConfig holds S3 upload settings
type StorageConfig struct {
	Bucket            string
	Prefix            string
	PresignExpiration time.Duration
	UsePathStyle      bool
}

// BedrockConfig holds model invocation settings
type BedrockConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopK        int
}

// KnowledgeBaseConfig holds retrieval and ingestion settings
type KnowledgeBaseConfig struct {
	ID            string
	RetrieverTopK int
	SystemPrompt  string
	RoleARN       string
	DataSourceID  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	MetricsEnabled    bool
	LogsEnabled       bool
	CollectorEndpoint string
	SamplingRatio     float64
	MetricsInterval   time.Duration
	ServiceName       string
	Insecure          bool
}

// envAliases binds the unprefixed variable names used by existing deployments.
// The prefixed name always wins over the alias.
var envAliases = map[string]string{
	"app.host":                       "API_HOST",
	"app.port":                       "API_PORT",
	"app.env":                        "APP_ENV",
	"aws.region":                     "AWS_REGION",
	"aws.access_key_id":              "AWS_ACCESS_KEY_ID",
	"aws.secret_access_key":          "AWS_SECRET_ACCESS_KEY",
	"aws.session_token":              "AWS_SESSION_TOKEN",
	"storage.bucket":                 "S3_BUCKET_NAME",
	"storage.prefix":                 "S3_PREFIX",
	"bedrock.model":                  "BEDROCK_MODEL",
	"bedrock.max_tokens":             "BEDROCK_MAX_TOKENS",
	"bedrock.temperature":            "BEDROCK_TEMPERATURE",
	"bedrock.top_k":                  "BEDROCK_TOP_K",
	"knowledge_base.id":              "KNOWLEDGE_BASE_ID",
	"knowledge_base.retriever_top_k": "RETRIEVER_TOP_K",
	"knowledge_base.system_prompt":   "SYSTEM_PROMPT",
	"knowledge_base.role_arn":        "KNOWLEDGE_BASE_ROLE_ARN",
	"knowledge_base.data_source_id":  "KNOWLEDGE_BASE_DATA_SOURCE_ID",
}

// Load loads configuration.
// Priority (highest to lowest):
// 1. Environment variables with CVA_ prefix (e.g., CVA_STORAGE_BUCKET)
// 2. Unprefixed aliases (e.g., S3_BUCKET_NAME), also read from .env
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Host: v.GetString("app.host"),
			Port: v.GetString("app.port"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("aws.region"),
			AccessKeyID:     v.GetString("aws.access_key_id"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			SessionToken:    v.GetString("aws.session_token"),
			Endpoint:        v.GetString("aws.endpoint"),
		},
		Storage: StorageConfig{
			Bucket:            v.GetString("storage.bucket"),
			Prefix:            v.GetString("storage.prefix"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
		},
		Bedrock: BedrockConfig{
			Model:       v.GetString("bedrock.model"),
			MaxTokens:   v.GetInt("bedrock.max_tokens"),
			Temperature: v.GetFloat64("bedrock.temperature"),
			TopK:        v.GetInt("bedrock.top_k"),
		},
		KnowledgeBase: KnowledgeBaseConfig{
			ID:            v.GetString("knowledge_base.id"),
			RetrieverTopK: v.GetInt("knowledge_base.retriever_top_k"),
			SystemPrompt:  v.GetString("knowledge_base.system_prompt"),
			RoleARN:       v.GetString("knowledge_base.role_arn"),
			DataSourceID:  v.GetString("knowledge_base.data_source_id"),
		},
		Categories: stringList(v, "categories"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  stringList(v, "http.cors_allow_origins"),
			CORSAllowMethods:  stringList(v, "http.cors_allow_methods"),
			CORSAllowHeaders:  stringList(v, "http.cors_allow_headers"),
			TrustedProxies:    stringList(v, "http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers scalar defaults, including ones whose zero value is meaningful
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cv-assistant")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", "8000")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("storage.prefix", "uploads/dev/")
	v.SetDefault("storage.presign_expiration", time.Hour)
	v.SetDefault("bedrock.model", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1024)
	v.SetDefault("bedrock.temperature", 0.7)
	v.SetDefault("bedrock.top_k", 5)
	v.SetDefault("knowledge_base.retriever_top_k", 3)
	v.SetDefault("knowledge_base.system_prompt", "You are a helpful assistant.")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 120*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)
	v.SetDefault("http.max_body_size", 25<<20)
	v.SetDefault("http.rate_limit_requests", 60)
	v.SetDefault("http.rate_limit_window", time.Minute)
	v.SetDefault("telemetry.collector_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.metrics_interval", 60*time.Second)
	v.SetDefault("telemetry.service_name", "cv-assistant")
}

// applyDefaults fills list settings that were left empty
func applyDefaults(cfg *Config) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = append([]string(nil), DefaultCategories...)
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Bedrock.Temperature < 0 || c.Bedrock.Temperature > 1 {
		return fmt.Errorf("bedrock.temperature must be between 0.0 and 1.0, got %f", c.Bedrock.Temperature)
	}
	if c.Bedrock.MaxTokens <= 0 {
		return fmt.Errorf("bedrock.max_tokens must be positive")
	}
	if c.Bedrock.TopK <= 0 {
		return fmt.Errorf("bedrock.top_k must be positive")
	}
	if c.KnowledgeBase.RetrieverTopK <= 0 {
		return fmt.Errorf("knowledge_base.retriever_top_k must be positive")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.HTTP.RateLimitEnabled && c.HTTP.RateLimitRequests <= 0 {
		return fmt.Errorf("http.rate_limit_requests must be positive when rate limiting is enabled")
	}

	if c.App.IsProduction() {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required in production")
		}
		if c.KnowledgeBase.ID == "" {
			return fmt.Errorf("knowledge_base.id is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// stringList reads a list that may come from TOML as an array or from the
// environment as a comma separated string. Items may contain spaces.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
