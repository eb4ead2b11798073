package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
// The API key is intentionally absent: it only comes from the environment.
type FileConfig struct {
	ServerPort      string `toml:"server_port"`
	UpstreamURL     string `toml:"upstream_url"`
	UpstreamTimeout string `toml:"upstream_timeout"`
	HTTPReferer     string `toml:"http_referer"`
	AppTitle        string `toml:"app_title"`
	MaxBodyBytes    int64  `toml:"max_body_bytes"`
	CORSOrigin      string `toml:"cors_origin"`
	CountTokens     *bool  `toml:"count_tokens"`
}

// LoadFile loads configuration from the TOML file at path.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WriteExample creates a config file with commented examples if none exists.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	example := `# Analysis proxy configuration
# The upstream credential is read from the OPENROUTER_API_KEY environment
# variable (or a .env file) and is never read from this file.

# server_port = ":8888"
# upstream_url = "https://openrouter.ai/api/v1/chat/completions"
# upstream_timeout = "60s"        # empty or 0 means no timeout
# http_referer = "https://example.com"
# app_title = "AI Career App"
# max_body_bytes = 1048576
# cors_origin = "https://example.com"
# count_tokens = false
`

	return os.WriteFile(path, []byte(example), 0644)
}
