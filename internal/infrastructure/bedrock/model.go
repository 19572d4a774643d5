package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const jsonContentType = "application/json"

// completionPaths locate the first text segment across model response families
var completionPaths = []string{
	"output.message.content.0.text", // Nova, Converse-style envelopes
	"content.0.text",                // Anthropic messages
	"results.0.outputText",          // Titan text
	"generation",                    // Llama
	"completion",                    // Anthropic text completions
}

// InvokeModelAPI is the subset of the runtime client used for generation
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// InferenceConfig holds sampling parameters sent with every prompt
type InferenceConfig struct {
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"topK"`
}

type messageContent struct {
	Text string `json:"text"`
}

type message struct {
	Role    string           `json:"role"`
	Content []messageContent `json:"content"`
}

type invokeRequest struct {
	Messages        []message       `json:"messages"`
	InferenceConfig InferenceConfig `json:"inferenceConfig"`
}

// ModelClient sends single-turn prompts to a Bedrock hosted model
type ModelClient struct {
	client    InvokeModelAPI
	modelID   string
	inference InferenceConfig
	logger    *zap.Logger
}

// NewModelClient creates a ModelClient for modelID
func NewModelClient(client InvokeModelAPI, modelID string, inference InferenceConfig, logger *zap.Logger) *ModelClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelClient{
		client:    client,
		modelID:   modelID,
		inference: inference,
		logger:    logger,
	}
}

// ModelID returns the invoked model identifier
func (m *ModelClient) ModelID() string {
	return m.modelID
}

// Generate sends prompt as the only user turn and returns the first text segment
// of the reply. Failures are returned as is; there is no retry.
func (m *ModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := BuildRequestBody(prompt, m.inference)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := m.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.modelID),
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
		Body:        body,
	})
	if err != nil {
		return "", wrapAPIError("invoke model "+m.modelID, err)
	}

	text, err := ExtractCompletion(out.Body)
	if err != nil {
		return "", fmt.Errorf("invoke model %s: %w", m.modelID, err)
	}

	m.logger.Debug("Model invocation complete",
		zap.String("model", m.modelID),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("completion_length", len(text)),
		zap.Duration("latency", time.Since(start)),
	)
	return text, nil
}

// BuildRequestBody encodes the messages envelope for prompt
func BuildRequestBody(prompt string, inference InferenceConfig) ([]byte, error) {
	body, err := json.Marshal(invokeRequest{
		Messages: []message{{
			Role:    "user",
			Content: []messageContent{{Text: prompt}},
		}},
		InferenceConfig: inference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode model request: %w", err)
	}
	return body, nil
}

// ExtractCompletion returns the first text segment of a model reply
func ExtractCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: invalid JSON", ErrEmptyCompletion)
	}
	for _, path := range completionPaths {
		if res := gjson.GetBytes(body, path); res.Exists() && res.Type == gjson.String {
			return res.String(), nil
		}
	}
	return "", ErrEmptyCompletion
}
