package infra

import (
	"net/http"
	"time"

	"github.com/RageTony4/ai-career-app/internal/transport/http/handler/shared"
	"github.com/RageTony4/ai-career-app/internal/version"
)

// AppName identifies the service in status responses.
const AppName = "ai-career-app"

// RootStatus returns JSON status and version information at /.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"name":    AppName,
		"version": version.Version,
		"status":  "running",
		"api":     "/api/analysis",
	}, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"status":                "active",
		"app":                   AppName,
		"uptime_seconds":        int64(time.Since(h.StartTime).Seconds()),
		"credential_configured": h.CredentialConfigured,
	}, http.StatusOK)
}
