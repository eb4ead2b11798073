// Package provider defines the contract between the proxy handler and an
// upstream chat-completion API.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RageTony4/ai-career-app/internal/types"
)

// ErrNoAPIKey is returned when no API key is configured for a request
var ErrNoAPIKey = errors.New("no API key configured")

// Provider defines the interface an upstream LLM API must implement
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// BaseURL returns the provider's API endpoint
	BaseURL() string

	// PrepareRequest adds provider-specific headers and modifications
	PrepareRequest(ctx context.Context, req *http.Request) error

	// Complete sends a single chat completion request authenticated with apiKey.
	// A non-2xx upstream status is reported as a *StatusError.
	Complete(ctx context.Context, apiKey string, req *types.ChatCompletionRequest) (*Result, error)
}

// Result contains a successful upstream response
type Result struct {
	// Body is the upstream JSON payload, validated and compacted
	Body json.RawMessage

	// StatusCode is the upstream HTTP status
	StatusCode int

	// Duration of the upstream round trip
	Duration time.Duration
}

// StatusError reports an upstream response with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

// NewStatusError builds a StatusError, falling back to a generic message
// when the upstream body carried none.
func NewStatusError(statusCode int, message string) *StatusError {
	if message == "" {
		message = fmt.Sprintf("API request failed: %d", statusCode)
	}
	return &StatusError{StatusCode: statusCode, Message: message}
}

func (e *StatusError) Error() string {
	return e.Message
}
