package handler

import (
	"log/slog"
	"time"

	"github.com/RageTony4/ai-career-app/internal/config"
	"github.com/RageTony4/ai-career-app/internal/provider"
	"github.com/RageTony4/ai-career-app/internal/tokenizer"
	"github.com/RageTony4/ai-career-app/internal/transport/http/handler/analysis"
	"github.com/RageTony4/ai-career-app/internal/transport/http/handler/infra"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Analysis *analysis.Handler
	Infra    *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
// tok may be nil to disable prompt token estimates.
func NewRepo(cfg *config.Config, prov provider.Provider, tok tokenizer.Tokenizer, logger *slog.Logger) *Repo {
	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}
	if tok != nil {
		opts = append(opts, analysis.WithTokenizer(tok))
	}

	return &Repo{
		Analysis: analysis.New(prov, cfg.APIKey, opts...),
		Infra:    infra.New(time.Now(), cfg.HasAPIKey()),
	}
}
