package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. The status code is derived from the error
//  5. Technical error + context is logged with request ID for correlation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/JonMunkholm/worldstats/internal/reconcile"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	errRateLimited   = errors.New("rate limit exceeded")
	rateLimitMessage = core.MapError(errRateLimited)

	invalidRequestMessage = core.UserMessage{
		Message: "Invalid request",
		Action:  "Check the request body against the API documentation",
		Code:    "REQ001",
	}
)

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoResult),
		errors.Is(err, core.ErrCountryNotFound),
		errors.Is(err, core.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrSourceFileNotFound),
		reconcile.IsSchemaError(err),
		errors.Is(err, reconcile.ErrNoSources):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch core.MapError(err).Code {
	case "SCH002", "FILE001", "FILE002":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error server-side and returns a
// user-friendly JSON error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.WithFields(r.Context(), "path", r.URL.Path, "method", r.Method)
	if status >= http.StatusInternalServerError {
		log.Error("request error", "status", status, "error", err.Error(), "code", userMsg.Code)
	} else {
		log.Info("request rejected", "status", status, "error", err.Error(), "code", userMsg.Code)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	respondErrorJSON(w, userMsg, status)
}

// respondInvalid reports a malformed or invalid request body.
func (s *Server) respondInvalid(w http.ResponseWriter, r *http.Request, detail string) {
	logging.FromContext(r.Context()).Warn("invalid request",
		"path", r.URL.Path,
		"method", r.Method,
		"detail", detail,
	)
	msg := invalidRequestMessage
	msg.Message = "Invalid request: " + detail
	respondErrorJSON(w, msg, http.StatusBadRequest)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
