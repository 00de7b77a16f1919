package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON envelope for errors: {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// opPrefix matches the "service.TripService.Create: " style prefixes layers
// add when wrapping.
var opPrefix = regexp.MustCompile(`^(?:[a-z]+\.[A-Za-z]+(?:\.[A-Za-z]+)?: )+`)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// badRequest answers a request rejected before reaching the service layer
// (malformed path parameter, query parameter or body).
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message)
}

// writeError maps a service error onto its HTTP status. Anything that is not
// a known domain error is logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", notFoundMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		writeErrorBody(w, http.StatusForbidden, "forbidden", "you do not have access to this trip")
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusConflict, "conflict", unwrapMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrAuthentication):
		writeErrorBody(w, http.StatusUnauthorized, "invalid_credentials", domain.ErrAuthentication.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeErrorBody(w, http.StatusUnauthorized, "unauthenticated", domain.ErrUnauthenticated.Error())
	case errors.As(err, &tooLarge):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.AuthService.Register: validation error: display_name is required" → "display_name is required"
// and "email a@b.c is already registered: conflict" → "email a@b.c is already registered".
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := opPrefix.ReplaceAllString(err.Error(), "")
	if msg == sentinel.Error() {
		return msg
	}
	msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	return msg
}

// notFoundMessage turns "trip <id>: not found" into "trip <id> not found".
func notFoundMessage(err error) string {
	msg := unwrapMessage(err, domain.ErrNotFound)
	if msg == domain.ErrNotFound.Error() {
		return "resource not found"
	}
	return msg + " not found"
}

// logger returns the server logger, falling back to the default one.
func logger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
