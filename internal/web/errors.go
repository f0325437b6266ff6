// internal/web/errors.go
// This file contains the error-response helpers. Every failure a client sees
// goes through one of them, so the {"error": ..., "success": false} shape is
// defined in one place.
package web

import (
	"log/slog"
	"net/http"
)

// Responder writes JSON error responses and logs the failures behind them.
// Applications embed it so handlers can call the helpers directly.
type Responder struct {
	Logger *slog.Logger
}

// LogError logs an internal error with the request that caused it.
func (rs *Responder) LogError(r *http.Request, err error) {
	rs.Logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", RequestIDFromContext(r.Context())),
	)
}

// ErrorResponse sends a failure envelope with the given status code. It is
// the building block for the helpers below.
func (rs *Responder) ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	data := Envelope{"error": message, "success": false}
	err := WriteJSON(w, status, data, nil)
	// Writing JSON failed; fall back to a bare status line.
	if err != nil {
		rs.LogError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// FailureResponse reports a logical failure with a 200 status; the outcome
// travels in the body.
func (rs *Responder) FailureResponse(w http.ResponseWriter, r *http.Request, message string) {
	err := WriteJSON(w, http.StatusOK, Failure(message), nil)
	if err != nil {
		rs.LogError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// ServerErrorResponse logs err and sends a generic 500. Error details never
// reach the client.
func (rs *Responder) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.LogError(r, err)
	rs.ErrorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// NotFoundResponse sends a 404.
func (rs *Responder) NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	rs.ErrorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// MethodNotAllowedResponse sends a 405.
func (rs *Responder) MethodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	rs.ErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// FailedValidationResponse reports field-level validation errors collected
// by a validator.Validator.
func (rs *Responder) FailedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	rs.ErrorResponse(w, r, http.StatusOK, errors)
}

// RateLimitExceededResponse sends a 429.
func (rs *Responder) RateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	rs.ErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
