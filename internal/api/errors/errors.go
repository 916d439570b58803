// Package errors provides structured error types and response helpers for the API.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes for structured API responses.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// APIError represents a structured API error response.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of the error with additional details.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	return &APIError{
		Code:      e.Code,
		Message:   e.Message,
		Details:   details,
		RequestID: e.RequestID,
	}
}

// WithRequestID returns a copy of the error with the request ID set.
func (e *APIError) WithRequestID(requestID string) *APIError {
	return &APIError{
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		RequestID: requestID,
	}
}

// New creates a new APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *APIError {
	return New(CodeValidationError, message)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *APIError {
	return New(CodeNotFound, message)
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(message string) *APIError {
	return New(CodeUnauthorized, message)
}

// NewPayloadTooLargeError creates a payload too large error.
func NewPayloadTooLargeError(message string) *APIError {
	return New(CodePayloadTooLarge, message)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *APIError {
	return New(CodeInternalError, message)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error.
func (e *APIError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an APIError as a JSON response.
func WriteError(w http.ResponseWriter, err *APIError) {
	WriteJSON(w, err.HTTPStatusCode(), err)
}

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of field-level validation errors.
type ValidationErrors []ValidationError

// Add adds a new validation error for a field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// ToAPIError converts validation errors to an APIError with field details.
func (v ValidationErrors) ToAPIError() *APIError {
	if len(v) == 0 {
		return NewValidationError("validation failed")
	}
	fields := make(map[string]any, len(v))
	for _, e := range v {
		fields[e.Field] = e.Message
	}
	return NewValidationError("validation failed").WithDetails(fields)
}
