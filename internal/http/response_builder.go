// Package http serves the ledger as a JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps ledger errors onto status codes in one place.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finledger/internal/core"
	"finledger/internal/log"
)

// WarningHeader is set when a mutation took effect but its snapshot could
// not be saved.
const WarningHeader = "X-Ledger-Warning"

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Warning flags a failed save on an otherwise successful mutation. The
// underlying cause stays in the logs.
func (b *JSONResponseBuilder) Warning(err error) *JSONResponseBuilder {
	if core.IsWarning(err) {
		b.headers[WarningHeader] = core.ErrPersistence.Error()
	}
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorBody is the JSON shape of every error response. Fields maps each
// rejected request field to its message.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message, Code: code})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "invalid_input", message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "not_found", message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", message)
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, please try again later")
}

// statusFor maps a ledger error to its response. Insufficient funds is a
// conflict with current state; exceeding a limit is a request the resource
// can never accept as sent.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input", log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found", log.ErrorTypeNotFound
	case errors.Is(err, core.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds", log.ErrorTypeFunds
	case errors.Is(err, core.ErrExceedsLimit):
		return http.StatusUnprocessableEntity, "exceeds_limit", log.ErrorTypeLimit
	}
	return http.StatusInternalServerError, "internal", log.ErrorTypeInternal
}

// writeError logs err and sends the matching error response. Internal errors
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, errType := statusFor(err)
	logger := log.FromContext(r.Context())
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op, log.FieldErrorType, errType, log.FieldError, err)
		msg = "internal error"
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op, log.FieldErrorType, errType, log.FieldError, err)
	}
	body := ErrorBody{Error: msg, Code: code}
	var fe *FormError
	if errors.As(err, &fe) {
		body.Error = "validation failed"
		body.Fields = fe.Fields
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}

// respond writes v for a mutation result. A persistence warning keeps the
// success status and is surfaced in a header; any other error is written
// as an error response.
func respond(w http.ResponseWriter, r *http.Request, op string, status int, v any, err error) {
	if err != nil && !core.IsWarning(err) {
		writeError(w, r, op, err)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Mutation applied but not persisted",
			log.FieldOperation, op, log.FieldErrorType, log.ErrorTypeDatabase, log.FieldError, err)
	}
	NewJSONResponse().Status(status).Body(v).Warning(err).Write(w)
}
