// Package errors provides structured error handling for somnia services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeStorageNotConfigured Code = "STORAGE_NOT_CONFIGURED"

	// Request validation errors
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeInvalidBody      Code = "INVALID_BODY"
	CodeTextRequired     Code = "TEXT_REQUIRED"

	// Upstream storage errors
	CodeStorageFailure      Code = "STORAGE_FAILURE"
	CodeUpstreamRejected    Code = "UPSTREAM_REJECTED"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
)

// HTTPStatus maps the code to the HTTP status returned at service boundaries.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeInvalidBody, CodeTextRequired:
		return http.StatusBadRequest
	case CodeStorageNotConfigured, CodeStorageFailure, CodeUpstreamRejected, CodeUpstreamUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may reasonably retry the operation.
// Validation and configuration problems never fix themselves.
func (c Code) Retryable() bool {
	switch c {
	case CodeUpstreamUnavailable, CodeStorageFailure:
		return true
	default:
		return false
	}
}
