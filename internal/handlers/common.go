package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Funya-okina/sightseeingLog/internal/ai"
)

// Stable error classification codes returned to clients.
const (
	CodeBadRequest       = "bad_request"
	CodePayloadTooLarge  = "payload_too_large"
	CodeUnsupportedMedia = "unsupported_media_type"
	CodeUnprocessable    = "unprocessable"
	CodeExtractionFailed = "extraction_failed"
	CodeUpstreamError    = "upstream_error"
	CodeMisconfigured    = "misconfigured"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError sends a structured error response
func respondError(w http.ResponseWriter, message, code string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// classify maps a pipeline error onto an HTTP status and a stable code.
// Missing credentials are a server misconfiguration, a malformed AI response
// is unprocessable, everything else is a failed required upstream call.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrMissingCredentials):
		return http.StatusInternalServerError, CodeMisconfigured
	case errors.Is(err, ai.ErrUnprocessable):
		return http.StatusUnprocessableEntity, CodeUnprocessable
	default:
		return http.StatusBadGateway, CodeUpstreamError
	}
}
