package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RageTony4/ai-career-app/internal/app"
	"github.com/RageTony4/ai-career-app/internal/config"
	"github.com/RageTony4/ai-career-app/internal/provider/openrouter"
	"github.com/RageTony4/ai-career-app/internal/tokenizer"
	"github.com/RageTony4/ai-career-app/internal/transport/http/handler"
	"github.com/RageTony4/ai-career-app/internal/version"
)

const shutdownTimeout = 30 * time.Second

type rootOptions struct {
	configPath string
	envFile    string
	port       string
	logFormat  string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "api",
		Short:        "Analysis proxy that keeps the OpenRouter API key on the server",
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml (default $CONFIG_FILE or ./config.toml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&opts.port, "port", "", "listen address, e.g. :8888 (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newInitConfigCmd(opts))

	return cmd
}

func newInitConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write an example config.toml if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath(opts.configPath)
			if err := config.WriteExample(path); err != nil {
				return fmt.Errorf("write example config: %w", err)
			}
			cmd.Printf("config: %s\n", path)
			return nil
		},
	}
}

// loadConfig applies the dotenv file, then file and env config, then flags.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.port != "" {
		cfg.ServerPort = opts.port
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := setupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if !cfg.HasAPIKey() {
		logger.Warn("upstream API key is not set; analysis requests will fail until it is", "env", config.APIKeyEnv)
	}

	printStartupBanner(cfg)

	prov := openrouter.New(openrouter.Options{
		BaseURL:     cfg.UpstreamURL,
		HTTPReferer: cfg.HTTPReferer,
		AppTitle:    cfg.AppTitle,
		Timeout:     cfg.UpstreamTimeout,
	})

	var tok tokenizer.Tokenizer
	if cfg.CountTokens {
		tok = tokenizer.New()
	}

	repo := handler.NewRepo(cfg, prov, tok, logger)
	router := app.NewRouter(repo, &app.RouterOptions{
		Logger:     logger,
		CORSOrigin: cfg.CORSOrigin,
	})
	srv := app.NewServer(cfg, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
