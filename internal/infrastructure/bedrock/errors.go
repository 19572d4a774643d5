// Package bedrock adapts the Amazon Bedrock knowledge base, runtime and agent
// APIs to the answer pipeline and the document sync flow.
package bedrock

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	// ErrEmptyCompletion is returned when a model reply has no text segment
	ErrEmptyCompletion = errors.New("model response contained no text")
	// ErrMissingContent is returned when a retrieved chunk has no text
	ErrMissingContent = errors.New("retrieval result has no content text")
)

// wrapAPIError prefixes err with op and, when available, the service error code
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (%s): %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// APIErrorCode returns the service error code carried by err, or ""
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
