package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPromptRequired is returned when the inbound body has no prompt.
	ErrPromptRequired = errors.New("prompt is required")

	// ErrModelRequired is returned when the inbound body has no model.
	ErrModelRequired = errors.New("model is required")
)

// AnalysisRequest is the body a caller posts to the proxy.
// Prompt is a pointer so an absent prompt can be told apart from an empty one.
type AnalysisRequest struct {
	Prompt *string `json:"prompt"`
	Model  string  `json:"model"`
}

// DecodeAnalysisRequest parses and validates an inbound body.
// Unknown fields are ignored.
func DecodeAnalysisRequest(body []byte) (*AnalysisRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("request body is empty")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("request body must be a JSON object")
	}

	var req AnalysisRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Validate checks the fields required to build an upstream request.
func (r *AnalysisRequest) Validate() error {
	if r.Prompt == nil {
		return ErrPromptRequired
	}
	if r.Model == "" {
		return ErrModelRequired
	}
	return nil
}

// TrimmedPrompt returns the prompt without leading and trailing whitespace.
func (r *AnalysisRequest) TrimmedPrompt() string {
	if r.Prompt == nil {
		return ""
	}
	return strings.TrimSpace(*r.Prompt)
}

// ChatCompletionRequest is the body sent to the upstream chat-completions API.
type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// NewAnalysisCompletion builds the upstream request for an analysis prompt:
// the model verbatim and a single user message holding the trimmed prompt.
func NewAnalysisCompletion(req *AnalysisRequest) *ChatCompletionRequest {
	return &ChatCompletionRequest{
		Model:    req.Model,
		Messages: []Message{NewTextMessage(RoleUser, req.TrimmedPrompt())},
	}
}
