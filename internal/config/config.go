package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUpstreamURL is the OpenRouter chat-completions endpoint.
const DefaultUpstreamURL = "https://openrouter.ai/api/v1/chat/completions"

// APIKeyEnv names the environment variable holding the upstream credential.
const APIKeyEnv = "OPENROUTER_API_KEY"

// DefaultMaxBodyBytes caps inbound request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config holds application configuration loaded from environment and file.
// Priority: CLI flags → Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8888")
	ServerPort string

	// APIKey is the upstream bearer credential. Only read from the environment.
	// An empty key is reported per request, not at startup.
	APIKey string

	// UpstreamURL is the chat-completions endpoint requests are forwarded to.
	UpstreamURL string

	// UpstreamTimeout bounds the outbound call. Zero means no timeout.
	UpstreamTimeout time.Duration

	// HTTPReferer and AppTitle are optional OpenRouter attribution headers.
	HTTPReferer string
	AppTitle    string

	// MaxBodyBytes limits the size of an inbound request body.
	MaxBodyBytes int64

	// CORSOrigin enables CORS for the given origin when non-empty.
	CORSOrigin string

	// CountTokens enables prompt token estimation on the debug log.
	CountTokens bool

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string

	// LogFormat is "text" or "json".
	LogFormat string
}

// Load reads configuration from the TOML file at path and environment variables.
// Environment variables override file config values. An empty path falls back
// to ConfigPath.
func Load(path string) (*Config, error) {
	fileConfig, err := LoadFile(ConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	timeout, err := getEnvDurationOrFile("UPSTREAM_TIMEOUT", fileConfig.UpstreamTimeout, 0)
	if err != nil {
		return nil, err
	}
	maxBody, err := getEnvInt64OrFile("MAX_BODY_BYTES", fileConfig.MaxBodyBytes, DefaultMaxBodyBytes)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8888"),
		APIKey:          strings.TrimSpace(os.Getenv(APIKeyEnv)),
		UpstreamURL:     getEnvOrFile("UPSTREAM_URL", fileConfig.UpstreamURL, DefaultUpstreamURL),
		UpstreamTimeout: timeout,
		HTTPReferer:     getEnvOrFile("HTTP_REFERER", fileConfig.HTTPReferer, ""),
		AppTitle:        getEnvOrFile("APP_TITLE", fileConfig.AppTitle, ""),
		MaxBodyBytes:    maxBody,
		CORSOrigin:      getEnvOrFile("CORS_ORIGIN", fileConfig.CORSOrigin, ""),
		CountTokens:     getEnvBoolOrFile("COUNT_TOKENS", fileConfig.CountTokens, false),
		LogLevel:        getEnvOrFile("LOG_LEVEL", "", "info"),
		LogFormat:       getEnvOrFile("LOG_FORMAT", "", "text"),
	}, nil
}

// Validate checks settings that would make the server unusable.
// A missing API key is deliberately not an error here.
func (c *Config) Validate() error {
	u, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid upstream_url %q: %w", c.UpstreamURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid upstream_url %q: must be an absolute http(s) URL", c.UpstreamURL)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max_body_bytes must be positive")
	}
	if c.UpstreamTimeout < 0 {
		return errors.New("upstream_timeout must not be negative")
	}
	return nil
}

// HasAPIKey reports whether an upstream credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

func getEnvDurationOrFile(key, fileValue string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrFile(key, fileValue, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getEnvInt64OrFile(key string, fileValue, defaultValue int64) (int64, error) {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		return n, nil
	}
	if fileValue != 0 {
		return fileValue, nil
	}
	return defaultValue, nil
}
