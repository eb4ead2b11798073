package types

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the failure body returned to callers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// UpstreamErrorEnvelope is the error payload returned by OpenAI-compatible APIs.
// The error member is kept raw because providers disagree on its shape.
type UpstreamErrorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// upstreamErrorDetail is the {"message": ...} object form of the error member.
type upstreamErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// ExtractUpstreamMessage returns the error message from an upstream error body.
// Both {"error":{"message":"..."}} and {"error":"..."} are understood.
// ok is false when body is not JSON or carries no non-empty message.
func ExtractUpstreamMessage(body []byte) (message string, ok bool) {
	var env UpstreamErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return "", false
	}

	var detail upstreamErrorDetail
	if err := json.Unmarshal(env.Error, &detail); err == nil {
		if msg := strings.TrimSpace(detail.Message); msg != "" {
			return detail.Message, true
		}
		return "", false
	}

	var text string
	if err := json.Unmarshal(env.Error, &text); err == nil && strings.TrimSpace(text) != "" {
		return text, true
	}
	return "", false
}
