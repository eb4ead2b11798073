// Package analysis implements the credential-holding proxy endpoint: it takes
// a prompt and model from the caller, forwards a chat completion upstream with
// the server's API key, and relays the result.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/RageTony4/ai-career-app/internal/provider"
	"github.com/RageTony4/ai-career-app/internal/tokenizer"
	"github.com/RageTony4/ai-career-app/internal/transport/http/middleware"
	"github.com/RageTony4/ai-career-app/internal/types"
)

// DefaultMaxBodyBytes caps inbound bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// tokenCountTimeout is the maximum time to wait for token counting after the upstream call.
const tokenCountTimeout = 100 * time.Millisecond

// Handler serves the analysis endpoint. It is safe for concurrent use.
type Handler struct {
	provider     provider.Provider
	apiKey       string
	logger       *slog.Logger
	tokenizer    tokenizer.Tokenizer
	maxBodyBytes int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for fault and debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTokenizer enables prompt token estimates on the debug log.
func WithTokenizer(tok tokenizer.Tokenizer) Option {
	return func(h *Handler) {
		h.tokenizer = tok
	}
}

// WithMaxBodyBytes limits the inbound body size.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// New creates the analysis handler. apiKey may be empty; requests then fail
// with ErrMissingCredential instead of the server refusing to start.
func New(prov provider.Provider, apiKey string, opts ...Option) *Handler {
	h := &Handler{
		provider:     prov,
		apiKey:       apiKey,
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles one analysis request. Every failure after the method
// check becomes a 500 with an {"error": message} body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	payload, err := h.analyze(r)
	if err != nil {
		h.writeFault(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// analyze runs parse, credential check and the upstream call.
// Any returned error is a *Fault.
func (h *Handler) analyze(r *http.Request) (json.RawMessage, error) {
	req, err := h.readRequest(r)
	if err != nil {
		return nil, newFault(KindMalformedBody, "invalid request body: "+err.Error(), err)
	}

	if h.apiKey == "" {
		return nil, newFault(KindMissingCredential, ErrMissingCredential.Error(), ErrMissingCredential)
	}

	completion := types.NewAnalysisCompletion(req)
	tokens := h.countPromptTokens(r, completion)

	result, err := h.provider.Complete(r.Context(), h.apiKey, completion)
	h.logPromptTokens(r, completion.Model, tokens)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) {
			return nil, newFault(KindUpstreamRejected, statusErr.Message, err)
		}
		return nil, newFault(KindTransport, err.Error(), err)
	}

	return result.Body, nil
}

// readRequest reads at most maxBodyBytes and decodes the analysis request.
func (h *Handler) readRequest(r *http.Request) (*types.AnalysisRequest, error) {
	if r.Body == nil {
		return nil, errors.New("request body is empty")
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > h.maxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", h.maxBodyBytes)
	}

	return types.DecodeAnalysisRequest(body)
}

// countPromptTokens starts token counting in the background so the upstream
// call is not delayed. The channel is nil when counting is disabled or
// debug logging is off.
func (h *Handler) countPromptTokens(r *http.Request, req *types.ChatCompletionRequest) <-chan int {
	if h.tokenizer == nil || !h.logger.Enabled(r.Context(), slog.LevelDebug) {
		return nil
	}
	tokensChan := make(chan int, 1)
	go func() {
		defer close(tokensChan)
		if tokens, err := h.tokenizer.CountRequest(req); err == nil {
			tokensChan <- tokens
		}
	}()
	return tokensChan
}

// logPromptTokens waits briefly for the background count and logs it at debug level.
func (h *Handler) logPromptTokens(r *http.Request, model string, tokensChan <-chan int) {
	if tokensChan == nil {
		return
	}
	select {
	case tokens, ok := <-tokensChan:
		if ok {
			h.logger.DebugContext(r.Context(), "analysis prompt",
				"model", model,
				"prompt_tokens", tokens,
				"request_id", middleware.GetRequestID(r.Context()),
			)
		}
	case <-time.After(tokenCountTimeout):
	}
}

// writeFault is the single translation point from a fault to an HTTP response.
func (h *Handler) writeFault(w http.ResponseWriter, r *http.Request, err error) {
	f := asFault(err)

	h.logger.ErrorContext(r.Context(), "analysis request failed",
		"kind", f.Kind.String(),
		"error", f.Message,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	types.WriteError(w, http.StatusInternalServerError, f.Message)
}

// writeMethodNotAllowed writes a plain-text 405 without a trailing newline.
func writeMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodPost)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = io.WriteString(w, "Method Not Allowed")
}
