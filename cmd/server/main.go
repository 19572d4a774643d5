package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	chatapp "github.com/cvassistant/backend/internal/application/chat"
	documentapp "github.com/cvassistant/backend/internal/application/document"
	"github.com/cvassistant/backend/internal/domain/rag"
	"github.com/cvassistant/backend/internal/infrastructure/awsclient"
	"github.com/cvassistant/backend/internal/infrastructure/bedrock"
	"github.com/cvassistant/backend/internal/infrastructure/config"
	"github.com/cvassistant/backend/internal/infrastructure/logger"
	"github.com/cvassistant/backend/internal/infrastructure/storage"
	"github.com/cvassistant/backend/internal/infrastructure/telemetry"
	"github.com/cvassistant/backend/internal/interfaces/http/handler"
	"github.com/cvassistant/backend/internal/interfaces/http/middleware"
	"github.com/cvassistant/backend/internal/interfaces/http/router"
	"github.com/cvassistant/backend/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = telemetry.DefaultServiceVersion

// objectStore is satisfied by both the S3 and the in-memory storage
type objectStore interface {
	documentapp.ObjectStore
	rag.Presigner
}

type telemetryProviders struct {
	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CV Assistant",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("address", cfg.App.Address()),
	)

	ctx := context.Background()

	providers, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.logs.IsEnabled() {
		log = telemetry.Bridge(log, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, providers.logs, logger.ParseLevel(cfg.Log.Level)))
	}

	assistantMetrics, err := telemetry.NewAssistantMetrics(providers.meter.Meter(telemetry.MeterName))
	if err != nil {
		log.Warn("Assistant metrics unavailable", zap.Error(err))
		assistantMetrics = nil
	}

	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		log.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	store, err := newObjectStore(awsCfg, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Bedrock calls fail fast; the caller decides whether to retry.
	bedrockCfg := awsclient.WithoutRetries(awsCfg)
	retriever := bedrock.NewKnowledgeBaseRetriever(
		bedrockagentruntime.NewFromConfig(bedrockCfg),
		cfg.KnowledgeBase.ID,
		cfg.KnowledgeBase.RetrieverTopK,
		log,
	)
	model := bedrock.NewModelClient(
		bedrockruntime.NewFromConfig(bedrockCfg),
		cfg.Bedrock.Model,
		bedrock.InferenceConfig{
			MaxTokens:   cfg.Bedrock.MaxTokens,
			Temperature: cfg.Bedrock.Temperature,
			TopK:        cfg.Bedrock.TopK,
		},
		log,
	)

	var syncer documentapp.Syncer
	if cfg.KnowledgeBase.ID != "" {
		syncer = bedrock.NewIngestionSyncer(bedrock.NewAgentClient(awsCfg, cfg.KnowledgeBase.RoleARN), log)
	} else {
		log.Warn("Knowledge base not configured; chat retrieval and sync will fail")
	}

	chatService := chatapp.NewService(retriever, model, store, chatapp.ServiceConfig{
		SystemPrompt: cfg.KnowledgeBase.SystemPrompt,
		ModelID:      cfg.Bedrock.Model,
	}, log)
	uploadService := documentapp.NewUploadService(store, cfg.Storage.Prefix, log)
	syncService := documentapp.NewSyncService(syncer, cfg.KnowledgeBase.ID, cfg.KnowledgeBase.DataSourceID, log)
	if assistantMetrics != nil {
		chatService.SetMetrics(assistantMetrics)
		uploadService.SetMetrics(assistantMetrics)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if providers.tracer.IsEnabled() {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanEnricher())
	}
	if providers.meter.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(providers.meter.Meter(telemetry.MeterName), log))
	}
	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	ui, err := web.FileSystem()
	if err != nil {
		log.Warn("Web UI unavailable", zap.Error(err))
		ui = nil
	}

	router.Mount(engine, router.Handlers{
		System:     handler.NewSystemHandler(version),
		Chat:       handler.NewChatHandler(chatService),
		Upload:     handler.NewUploadHandler(uploadService),
		Categories: handler.NewCategoriesHandler(cfg.Categories),
		Sync:       handler.NewSyncHandler(syncService),
	}, ui)

	srv := &http.Server{
		Addr:           cfg.App.Address(),
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	providers.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

// setupTelemetry creates the trace, metric and log providers. Disabled
// providers are returned as no-ops so callers never nil-check them.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryProviders, error) {
	tc := cfg.Telemetry

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    version,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    version,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    version,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	return &telemetryProviders{tracer: tracer, meter: meter, logs: logs}, nil
}

func (p *telemetryProviders) shutdown(ctx context.Context, log *zap.Logger) {
	if err := p.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := p.meter.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// newObjectStore returns S3 storage when a bucket is configured. Outside
// production an unset bucket falls back to in-memory storage.
func newObjectStore(awsCfg aws.Config, cfg *config.Config, log *zap.Logger) (objectStore, error) {
	if cfg.Storage.Bucket == "" && !cfg.App.IsProduction() {
		log.Warn("storage.bucket not set; uploads are kept in memory")
		return storage.NewMemoryObjectStorage("local"), nil
	}
	return storage.NewS3ObjectStorage(awsCfg, &cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
}
