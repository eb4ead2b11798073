// Package openrouter implements the OpenRouter LLM provider.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RageTony4/ai-career-app/internal/provider"
	"github.com/RageTony4/ai-career-app/internal/types"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// Options configures the OpenRouter provider.
type Options struct {
	// BaseURL overrides the chat-completions endpoint.
	BaseURL string

	// HTTPReferer and AppTitle are OpenRouter attribution headers, sent when set.
	HTTPReferer string
	AppTitle    string

	// Timeout bounds the whole upstream call. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Provider implements the provider.Provider interface for OpenRouter.
// The API key is passed per call, not stored on the provider.
type Provider struct {
	baseURL  string
	referer  string
	appTitle string
	client   *http.Client
}

// New creates a new OpenRouter provider instance.
func New(opts Options) *Provider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Provider{
		baseURL:  baseURL,
		referer:  opts.HTTPReferer,
		appTitle: opts.AppTitle,
		client:   client,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openrouter"
}

// BaseURL returns the OpenRouter API endpoint
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// PrepareRequest adds the optional OpenRouter attribution headers.
func (p *Provider) PrepareRequest(ctx context.Context, req *http.Request) error {
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}
	if p.appTitle != "" {
		req.Header.Set("X-Title", p.appTitle)
	}
	return nil
}

// Complete posts req to OpenRouter and returns the upstream JSON payload.
// It makes exactly one attempt.
func (p *Provider) Complete(ctx context.Context, apiKey string, req *types.ChatCompletionRequest) (*provider.Result, error) {
	if apiKey == "" {
		return nil, provider.ErrNoAPIKey
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode upstream request: %w", err)
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	upstreamReq.Header.Set("Authorization", "Bearer "+apiKey)
	upstreamReq.Header.Set("Content-Type", "application/json")

	if err := p.PrepareRequest(ctx, upstreamReq); err != nil {
		return nil, fmt.Errorf("prepare upstream request: %w", err)
	}

	startTime := time.Now()
	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	return handleResponse(resp, time.Since(startTime))
}
