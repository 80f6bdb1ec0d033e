// Package apix defines the wire-level error and response types shared by the
// HTTP handlers and their tests.
package apix

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes used across the API.
const (
	ErrorCodeValidation   = "validation_error"
	ErrorCodeUnauthorized = "unauthorized"
	ErrorCodeForbidden    = "forbidden"
	ErrorCodeNotFound     = "not_found"
	ErrorCodeConflict     = "conflict"
	ErrorCodeInvalidOTP   = "invalid_otp"
	ErrorCodeServerError  = "server_error"
)

// APIError is the JSON error envelope every failing endpoint returns. It
// implements the error interface so handlers can pass it around before
// writing it.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "conflict")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// Details carries field-level validation messages when present
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// ErrUnauthorized is returned for missing, invalid, or expired
	// credentials. Deliberately identical for "no such user" and "wrong
	// password" so the response leaks nothing.
	ErrUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "invalid credentials",
	}

	// ErrInvalidToken is returned when the bearer token is missing, invalid,
	// expired, or revoked.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrForbidden is returned when the caller is authenticated but their
	// role is not allowed for this endpoint.
	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "insufficient role for this operation",
	}

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "the requested resource was not found",
	}

	// ErrConflict is returned when a uniqueness constraint would be violated.
	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "email or username already in use",
	}

	// ErrInvalidBody is returned when the JSON request body cannot be parsed.
	ErrInvalidBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "invalid request body",
	}

	// ErrServerError is returned for unexpected failures. Detail is withheld
	// from the caller and only logged server-side.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates a custom APIError.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// NewValidationError creates a 400 validation error with field details.
func NewValidationError(details map[string]string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "request validation failed",
		Details:     details,
	}
}

// NewOTPError wraps an OTP verification reason ("Invalid OTP code",
// "OTP code has expired") as a 400 response.
func NewOTPError(reason string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidOTP,
		Description: reason,
	}
}
