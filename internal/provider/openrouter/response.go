package openrouter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RageTony4/ai-career-app/internal/provider"
	"github.com/RageTony4/ai-career-app/internal/types"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 32 << 20

// handleResponse turns an upstream response into a Result or an error.
func handleResponse(resp *http.Response, duration time.Duration) (*provider.Result, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, body, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, body); err != nil {
		return nil, fmt.Errorf("invalid upstream response: %w", err)
	}

	return &provider.Result{
		Body:       compacted.Bytes(),
		StatusCode: resp.StatusCode,
		Duration:   duration,
	}, nil
}

// handleErrorResponse extracts the upstream error message when one is present.
// A body that could not be read is treated like one without a message.
func handleErrorResponse(statusCode int, body []byte, readErr error) *provider.StatusError {
	if readErr != nil {
		return provider.NewStatusError(statusCode, "")
	}
	message, _ := types.ExtractUpstreamMessage(body)
	return provider.NewStatusError(statusCode, message)
}
