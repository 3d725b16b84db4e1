// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ActionResult is the uniform envelope returned by UI-facing actions such as
// upload and download-link generation. Deep pipeline errors are never
// surfaced synchronously; the caller observes a receipt stuck in pending.
type ActionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes a JSON error body with the given
// status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondAction writes a successful action envelope.
func RespondAction(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, ActionResult{Success: true, Data: data})
}

// RespondActionError logs the error and writes a failed action envelope.
// Action endpoints always answer 200 with success=false so clients handle a
// single shape.
func RespondActionError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("action failed", "error", err)
	RespondJSON(w, http.StatusOK, ActionResult{Success: false, Error: err.Error()})
}
