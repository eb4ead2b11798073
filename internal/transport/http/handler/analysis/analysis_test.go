package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RageTony4/ai-career-app/internal/provider"
	"github.com/RageTony4/ai-career-app/internal/provider/openrouter"
	"github.com/RageTony4/ai-career-app/internal/types"
)

const testAPIKey = "sk-or-test-secret"

// fakeProvider records calls and returns a canned result.
type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	lastKey string
	lastReq *types.ChatCompletionRequest

	result *provider.Result
	err    error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) BaseURL() string { return "https://fake.test" }
func (f *fakeProvider) PrepareRequest(ctx context.Context, req *http.Request) error { return nil }
func (f *fakeProvider) Complete(ctx context.Context, apiKey string, req *types.ChatCompletionRequest) (*provider.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastKey = apiKey
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeTokenizer returns a fixed count.
type fakeTokenizer struct{ count int }

func (f fakeTokenizer) CountTokens(text, model string) (int, error) { return f.count, nil }
func (f fakeTokenizer) CountRequest(req *types.ChatCompletionRequest) (int, error) {
	return f.count, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/analysis", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp.Error
}

func TestServeHTTP_RejectsNonPost(t *testing.T) {
	methods := []string{
		http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodHead, http.MethodOptions,
	}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			fake := &fakeProvider{}
			h := New(fake, testAPIKey, WithLogger(discardLogger()))

			rec := serve(t, h, method, `{"prompt":"p","model":"m"}`)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
			if method != http.MethodHead {
				assert.Equal(t, "Method Not Allowed", rec.Body.String())
			}
			assert.Zero(t, fake.callCount())
		})
	}
}

func TestServeHTTP_MalformedBody(t *testing.T) {
	bodies := map[string]string{
		"invalid json":   `{"prompt":`,
		"not an object":  `"just a string"`,
		"missing prompt": `{"model":"m"}`,
		"missing model":  `{"prompt":"p"}`,
		"wrong type":     `{"prompt":["a"],"model":"m"}`,
		"empty":          ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			fake := &fakeProvider{}
			h := New(fake, testAPIKey, WithLogger(discardLogger()))

			rec := serve(t, h, http.MethodPost, body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, decodeError(t, rec))
			assert.Zero(t, fake.callCount())
		})
	}
}

func TestServeHTTP_BodyTooLarge(t *testing.T) {
	fake := &fakeProvider{}
	h := New(fake, testAPIKey, WithLogger(discardLogger()), WithMaxBodyBytes(32))

	rec := serve(t, h, http.MethodPost, `{"prompt":"`+strings.Repeat("a", 64)+`","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "exceeds 32 bytes")
	assert.Zero(t, fake.callCount())
}

func TestServeHTTP_MissingCredential(t *testing.T) {
	fake := &fakeProvider{}
	h := New(fake, "", WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"p","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API key is not configured on the server.", decodeError(t, rec))
	assert.Zero(t, fake.callCount())
}

func TestServeHTTP_MalformedBodyCheckedBeforeCredential(t *testing.T) {
	h := New(&fakeProvider{}, "", WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `not json`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, ErrMissingCredential.Error(), decodeError(t, rec))
}

func TestServeHTTP_UpstreamRejected(t *testing.T) {
	fake := &fakeProvider{err: provider.NewStatusError(http.StatusTooManyRequests, "X")}
	h := New(fake, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"p","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "X", decodeError(t, rec))
	assert.Equal(t, 1, fake.callCount())
}

func TestServeHTTP_UpstreamRejectedWithoutMessage(t *testing.T) {
	fake := &fakeProvider{err: provider.NewStatusError(http.StatusBadGateway, "")}
	h := New(fake, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"p","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API request failed: 502", decodeError(t, rec))
}

func TestServeHTTP_TransportFailure(t *testing.T) {
	fake := &fakeProvider{err: errors.New("upstream request failed: connection refused")}
	h := New(fake, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"p","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "upstream request failed: connection refused", decodeError(t, rec))
}

func TestServeHTTP_Success(t *testing.T) {
	payload := `{"choices":[{"message":{"role":"assistant","content":"Looks great"}}]}`
	fake := &fakeProvider{result: &provider.Result{Body: json.RawMessage(payload), StatusCode: http.StatusOK}}
	h := New(fake, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"  hi there  ","model":"gpt-x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, payload, rec.Body.String())

	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, testAPIKey, fake.lastKey)
	assert.Equal(t, "gpt-x", fake.lastReq.Model)
	require.Len(t, fake.lastReq.Messages, 1)
	assert.Equal(t, types.RoleUser, fake.lastReq.Messages[0].Role)
	assert.Equal(t, "hi there", fake.lastReq.Messages[0].Content)
}

func TestServeHTTP_FaultLogNeverContainsCredential(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fake := &fakeProvider{err: provider.NewStatusError(http.StatusUnauthorized, "invalid key")}
	h := New(fake, testAPIKey, WithLogger(logger), WithTokenizer(fakeTokenizer{count: 7}))

	rec := serve(t, h, http.MethodPost, `{"prompt":"confidential resume text","model":"m"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	logs := buf.String()
	assert.Contains(t, logs, "analysis request failed")
	assert.Contains(t, logs, "kind=upstream_rejected")
	assert.Contains(t, logs, "prompt_tokens=7")
	assert.NotContains(t, logs, testAPIKey)
	assert.NotContains(t, logs, "confidential resume text")
	assert.NotContains(t, rec.Body.String(), testAPIKey)
}

// TestServeHTTP_EndToEnd runs the handler against a fake OpenRouter server.
func TestServeHTTP_EndToEnd(t *testing.T) {
	var (
		gotAuth string
		gotType string
		gotBody []byte
	)
	upstreamPayload := `{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"ok"}}]}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamPayload))
	}))
	t.Cleanup(upstream.Close)

	prov := openrouter.New(openrouter.Options{BaseURL: upstream.URL, HTTPClient: upstream.Client()})
	h := New(prov, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"  hi there  ","model":"gpt-x"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstreamPayload, rec.Body.String())
	assert.Equal(t, "Bearer "+testAPIKey, gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, `{"model":"gpt-x","messages":[{"role":"user","content":"hi there"}]}`, string(gotBody))
}

func TestServeHTTP_EndToEndUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"User not found.","code":401}}`))
	}))
	t.Cleanup(upstream.Close)

	prov := openrouter.New(openrouter.Options{BaseURL: upstream.URL})
	h := New(prov, testAPIKey, WithLogger(discardLogger()))

	rec := serve(t, h, http.MethodPost, `{"prompt":"p","model":"m"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "User not found.", decodeError(t, rec))
}

func TestAsFault(t *testing.T) {
	f := asFault(errors.New("boom"))
	assert.Equal(t, KindTransport, f.Kind)
	assert.Equal(t, "boom", f.Message)

	original := newFault(KindMissingCredential, ErrMissingCredential.Error(), ErrMissingCredential)
	f = asFault(original)
	assert.Same(t, original, f)
	assert.ErrorIs(t, f, ErrMissingCredential)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "malformed_body", KindMalformedBody.String())
	assert.Equal(t, "missing_credential", KindMissingCredential.String())
	assert.Equal(t, "upstream_rejected", KindUpstreamRejected.String())
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "kind(0)", Kind(0).String())
}
