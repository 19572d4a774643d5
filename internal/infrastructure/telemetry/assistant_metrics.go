package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// MeterName names the meter used for assistant metrics
const MeterName = "cv-assistant"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// AssistantMetrics records chat and upload activity.
type AssistantMetrics struct {
	chatRequests       *Counter
	uploads            *Counter
	emptyRetrievals    *Counter
	retrievedChunks    *Histogram
	citations          *Histogram
	generationDuration *Histogram
}

// NewAssistantMetrics registers the assistant instruments on meter.
func NewAssistantMetrics(meter metric.Meter) (*AssistantMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	am := &AssistantMetrics{}
	var err error

	if am.chatRequests, err = NewCounter(meter, "cva_chat_requests_total", "Total number of chat requests", "{requests}"); err != nil {
		return nil, err
	}
	if am.uploads, err = NewCounter(meter, "cva_uploads_total", "Total number of document uploads", "{uploads}"); err != nil {
		return nil, err
	}
	if am.emptyRetrievals, err = NewCounter(meter, "cva_empty_retrievals_total", "Chat requests whose retrieval returned no chunks", "{requests}"); err != nil {
		return nil, err
	}
	if am.retrievedChunks, err = NewHistogram(meter, HistogramOpts{
		Name:        "cva_retrieved_chunks",
		Description: "Chunks returned by the knowledge base per chat request",
		Unit:        "{chunks}",
		Boundaries:  CountBuckets,
	}); err != nil {
		return nil, err
	}
	if am.citations, err = NewHistogram(meter, HistogramOpts{
		Name:        "cva_citations",
		Description: "Distinct sources cited per answer",
		Unit:        "{citations}",
		Boundaries:  CountBuckets,
	}); err != nil {
		return nil, err
	}
	if am.generationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "cva_generation_duration_ms",
		Description: "Model invocation latency",
		Unit:        "ms",
		Boundaries:  GenerationDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return am, nil
}

// RecordChat records one finished chat request.
func (am *AssistantMetrics) RecordChat(ctx context.Context, category, outcome string, chunks, citations int) {
	if am == nil {
		return
	}
	am.chatRequests.Inc(ctx, AttrCategory.String(category), AttrOutcome.String(outcome))
	if outcome == OutcomeEmpty {
		am.emptyRetrievals.Inc(ctx, AttrCategory.String(category))
	}
	if outcome != OutcomeError {
		am.retrievedChunks.Record(ctx, float64(chunks), AttrCategory.String(category))
		am.citations.Record(ctx, float64(citations), AttrCategory.String(category))
	}
}

// RecordGeneration records the latency of one model call.
func (am *AssistantMetrics) RecordGeneration(ctx context.Context, model string, d time.Duration, outcome string) {
	if am == nil {
		return
	}
	am.generationDuration.Record(ctx, float64(d.Milliseconds()), AttrModel.String(model), AttrOutcome.String(outcome))
}

// RecordUpload records one upload attempt.
func (am *AssistantMetrics) RecordUpload(ctx context.Context, category, fileType, outcome string) {
	if am == nil {
		return
	}
	am.uploads.Inc(ctx,
		AttrCategory.String(category),
		AttrFileType.String(fileType),
		AttrOutcome.String(outcome),
	)
}
