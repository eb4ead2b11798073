package config

import "os"

// DefaultConfigFile is used when neither --config nor CONFIG_FILE is set.
const DefaultConfigFile = "config.toml"

// ConfigPath resolves the config file location.
// Priority: explicit path → CONFIG_FILE env → ./config.toml
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("CONFIG_FILE"); env != "" {
		return env
	}
	return DefaultConfigFile
}
