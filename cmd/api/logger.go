package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/RageTony4/ai-career-app/internal/app"
	"github.com/RageTony4/ai-career-app/internal/config"
	"github.com/RageTony4/ai-career-app/internal/version"
)

func setupLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "AI Career App %s - Analysis Proxy\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Analysis:   http://localhost%s%s\n", cfg.ServerPort, app.AnalysisPath)
	fmt.Fprintf(os.Stderr, "Health:     http://localhost%s/api/health\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Upstream:   %s\n", cfg.UpstreamURL)
	if cfg.HasAPIKey() {
		fmt.Fprintf(os.Stderr, "API key:    configured (%s)\n", config.APIKeyEnv)
	} else {
		fmt.Fprintf(os.Stderr, "API key:    NOT SET (%s)\n", config.APIKeyEnv)
	}
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
