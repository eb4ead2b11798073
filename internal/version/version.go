// Package version exposes build metadata.
package version

// Version is set at build time via -ldflags "-X github.com/RageTony4/ai-career-app/internal/version.Version=v1.2.3".
var Version = "dev"
