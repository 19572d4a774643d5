package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	kbdocument "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/cvassistant/backend/internal/domain/rag"
	"go.uber.org/zap"
)

// Metadata keys attached to knowledge base chunks
const (
	MetadataSourceURI  = "x-amz-bedrock-kb-source-uri"
	MetadataPageNumber = "x-amz-bedrock-kb-document-page-number"
	MetadataCategory   = "category"
)

// RetrieveAPI is the subset of the agent runtime client used for retrieval
type RetrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// KnowledgeBaseRetriever queries a Bedrock knowledge base
type KnowledgeBaseRetriever struct {
	client          RetrieveAPI
	knowledgeBaseID string
	topK            int32
	logger          *zap.Logger
}

// NewKnowledgeBaseRetriever creates a retriever returning at most topK chunks per query
func NewKnowledgeBaseRetriever(client RetrieveAPI, knowledgeBaseID string, topK int, logger *zap.Logger) *KnowledgeBaseRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeBaseRetriever{
		client:          client,
		knowledgeBaseID: knowledgeBaseID,
		topK:            int32(topK),
		logger:          logger,
	}
}

// Retrieve returns chunks in the service's relevance order.
// A category, when present, is applied as an equality filter.
func (r *KnowledgeBaseRetriever) Retrieve(ctx context.Context, query rag.Query) ([]rag.RetrievalResult, error) {
	out, err := r.client.Retrieve(ctx, r.buildInput(query))
	if err != nil {
		return nil, wrapAPIError("knowledge base retrieve", err)
	}

	results := make([]rag.RetrievalResult, 0, len(out.RetrievalResults))
	for i, item := range out.RetrievalResults {
		result, err := r.convertResult(item)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		results = append(results, result)
	}

	r.logger.Debug("Knowledge base retrieval complete",
		zap.String("knowledge_base_id", r.knowledgeBaseID),
		zap.String("category", query.CategoryValue()),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (r *KnowledgeBaseRetriever) buildInput(query rag.Query) *bedrockagentruntime.RetrieveInput {
	vector := &types.KnowledgeBaseVectorSearchConfiguration{
		NumberOfResults: aws.Int32(r.topK),
	}
	if query.Category != nil {
		vector.Filter = &types.RetrievalFilterMemberEquals{
			Value: types.FilterAttribute{
				Key:   aws.String(MetadataCategory),
				Value: kbdocument.NewLazyDocument(*query.Category),
			},
		}
	}

	return &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query.Text)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: vector,
		},
	}
}

// convertResult validates one service result. Only the text is required.
func (r *KnowledgeBaseRetriever) convertResult(item types.KnowledgeBaseRetrievalResult) (rag.RetrievalResult, error) {
	if item.Content == nil || item.Content.Text == nil {
		return rag.RetrievalResult{}, ErrMissingContent
	}

	metadata := decodeMetadata(item.Metadata, r.logger)
	result := rag.RetrievalResult{
		Text:       *item.Content.Text,
		SourceURI:  stringValue(metadata[MetadataSourceURI]),
		PageNumber: pageNumber(metadata[MetadataPageNumber]),
		Category:   stringValue(metadata[MetadataCategory]),
		Score:      aws.ToFloat64(item.Score),
		Metadata:   metadata,
	}
	if result.SourceURI == "" && item.Location != nil && item.Location.S3Location != nil {
		result.SourceURI = aws.ToString(item.Location.S3Location.Uri)
	}
	if result.Category == "" {
		result.Category = rag.DefaultCategory
	}
	return result, nil
}

// decodeMetadata decodes each metadata value. A value that fails to decode is
// logged and left out so the remaining keys still map.
func decodeMetadata(raw map[string]kbdocument.Interface, logger *zap.Logger) map[string]any {
	metadata := make(map[string]any, len(raw))
	for key, doc := range raw {
		if doc == nil {
			continue
		}
		v, err := decodeDocument(doc)
		if err != nil {
			logger.Warn("Skipping undecodable chunk metadata",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		metadata[key] = v
	}
	return metadata
}

// decodeDocument round-trips a document through its JSON form. It works for
// response documents and for lazy documents built by callers. Numbers decode
// as json.Number.
func decodeDocument(doc kbdocument.Interface) (any, error) {
	raw, err := doc.MarshalSmithyDocument()
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}

type float64er interface {
	Float64() (float64, error)
}

// pageNumber coerces a metadata value to a non-negative page. Fractions
// truncate, numeric strings parse and anything else is 0.
func pageNumber(v any) int {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case float64er:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return ""
	}
}
