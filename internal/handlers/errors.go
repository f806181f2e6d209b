package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"alloneword/internal/service"
	"alloneword/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "error", err, "status", status)
	}

	http.Error(w, userMsg, status)
}

// jsonError is the body of every JSON error response
type jsonError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

func respondJSONError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, jsonError{Error: msg})
}

// statusFor maps a service error to its HTTP status and client message.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	var verrs validation.Errors
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, "validation failed"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, service.ErrPhraseNotFound),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrCommentRejected),
		errors.Is(err, service.ErrSelfLink),
		errors.Is(err, service.ErrNotStudent),
		errors.Is(err, service.ErrNotParent),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrContactUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

// respondServiceError writes err as a JSON error, adding field messages for validation failures
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	}

	body := jsonError{Error: msg}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}
	respondJSON(w, status, body)
}

// userMessage is the text shown on a re-rendered form for err
func userMessage(err error) string {
	status, msg := statusFor(err)
	if status == http.StatusBadRequest {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return verrs.Error()
		}
	}
	return msg
}
