// Package chat answers questions about uploaded CVs by grounding a model
// completion in knowledge base chunks.
package chat

import (
	"context"
	"time"

	"github.com/cvassistant/backend/internal/domain/rag"
	"github.com/cvassistant/backend/internal/infrastructure/logger"
	"github.com/cvassistant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ServiceConfig holds the prompt and model settings of the answer pipeline
type ServiceConfig struct {
	SystemPrompt string
	// ModelID labels generation metrics and spans
	ModelID string
}

// Service runs the retrieve, cite and generate stages for a query
type Service struct {
	retriever rag.Retriever
	generator rag.Generator
	presigner rag.Presigner
	config    ServiceConfig
	metrics   *telemetry.AssistantMetrics
	logger    *zap.Logger
}

// NewService creates a new chat Service. presigner may be nil.
func NewService(
	retriever rag.Retriever,
	generator rag.Generator,
	presigner rag.Presigner,
	config ServiceConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever: retriever,
		generator: generator,
		presigner: presigner,
		config:    config,
		logger:    logger,
	}
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.AssistantMetrics) {
	s.metrics = metrics
}

// Ask answers query. The pipeline is not interrupted by cancellation of ctx
// once started; any stage failure returns an error and no partial answer.
func (s *Service) Ask(ctx context.Context, query rag.Query) (*rag.AnswerPackage, error) {
	ctx = context.WithoutCancel(ctx)
	category := query.CategoryValue()
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("query", query.Text), zap.String("category", category))

	results, err := s.retrieve(ctx, query)
	if err != nil {
		log.Error("Knowledge base retrieval failed", zap.Error(err))
		s.metrics.RecordChat(ctx, category, telemetry.OutcomeError, 0, 0)
		return nil, err
	}
	log.Info("Retrieved chunks", zap.Int("results", len(results)))

	if len(results) == 0 {
		s.metrics.RecordChat(ctx, category, telemetry.OutcomeEmpty, 0, 0)
		return rag.EmptyAnswer(), nil
	}

	contextText, citations := s.cite(ctx, results)
	log.Info("Built citations", zap.Int("results", len(results)), zap.Int("citations", len(citations)))

	answer, err := s.generate(ctx, rag.BuildPrompt(s.config.SystemPrompt, contextText, query.Text))
	if err != nil {
		log.Error("Answer generation failed", zap.Error(err))
		s.metrics.RecordChat(ctx, category, telemetry.OutcomeError, len(results), len(citations))
		return nil, err
	}

	s.metrics.RecordChat(ctx, category, telemetry.OutcomeSuccess, len(results), len(citations))
	return &rag.AnswerPackage{
		AnswerText:   rag.RenderAnswer(answer, citations),
		Citations:    citations,
		TotalSources: len(citations),
	}, nil
}

func (s *Service) retrieve(ctx context.Context, query rag.Query) ([]rag.RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanRetrieve,
		telemetry.WithAttribute(telemetry.SpanAttrCategory, query.CategoryValue()),
	)
	defer span.End()

	results, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResults, len(results))
	return results, nil
}

func (s *Service) cite(ctx context.Context, results []rag.RetrievalResult) (string, []rag.Citation) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanCite)
	defer span.End()

	builder := rag.NewCitationBuilder(s.presigner)
	for _, result := range results {
		builder.Add(ctx, result)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrResults, len(results),
		telemetry.SpanAttrCitations, builder.Len(),
	)
	return rag.JoinContext(results), builder.Citations()
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanGenerate,
		telemetry.WithAttribute(telemetry.SpanAttrModel, s.config.ModelID),
		telemetry.WithAttribute(telemetry.SpanAttrPromptLength, len(prompt)),
	)
	defer span.End()

	start := time.Now()
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordGeneration(ctx, s.config.ModelID, time.Since(start), telemetry.OutcomeError)
		return "", err
	}
	s.metrics.RecordGeneration(ctx, s.config.ModelID, time.Since(start), telemetry.OutcomeSuccess)
	return answer, nil
}
