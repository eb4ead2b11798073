package app

import (
	"log/slog"
	"net/http"

	"github.com/RageTony4/ai-career-app/internal/transport/http/handler"
	"github.com/RageTony4/ai-career-app/internal/transport/http/middleware"
)

// AnalysisPath is the primary route of the proxy endpoint.
const AnalysisPath = "/api/analysis"

// NetlifyAnalysisPath keeps the path the frontend used when the endpoint was
// a Netlify function.
const NetlifyAnalysisPath = "/.netlify/functions/ai_analysis"

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger

	// CORSOrigin enables CORS for this origin; empty disables it.
	CORSOrigin string
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	if opts == nil {
		opts = &RouterOptions{}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)

	// The analysis handler enforces POST itself so every other method gets
	// its plain-text 405 body.
	mux.Handle(AnalysisPath, repo.Analysis)
	mux.Handle(NetlifyAnalysisPath, repo.Analysis)

	mux.HandleFunc("GET /{$}", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	h = middleware.RequestID(h)

	h = middleware.CORS(opts.CORSOrigin)(h)

	return h
}
