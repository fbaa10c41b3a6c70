// Package domain defines the sigstream value types and their codecs.
package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a structured code.
//
// Codes have the form SS-<AREA>-<NNNN>. The last four digits start with
// the HTTP status class the error maps to (4040 -> 404, 4221 -> 422, 5002 -> 500).
type DomainError struct {
	Code    string // Error code (e.g., "SS-STRM-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Stream errors (STRM).
var (
	// ErrStreamNotFound is returned when a stream address cannot be parsed.
	// A malformed address never reveals whether a stream exists, so it is
	// reported as absence rather than as a validation failure.
	ErrStreamNotFound = NewDomainError("SS-STRM-4040", "stream not found")
)

// Field errors (ARG). All map to 422 Unprocessable Entity.
var (
	// ErrInvalidEncoding indicates a field is not valid base64url text.
	ErrInvalidEncoding = NewDomainError("SS-ARG-4220", "invalid base64 encoding")

	// ErrInvalidSize indicates a field decoded to the wrong number of bytes.
	ErrInvalidSize = NewDomainError("SS-ARG-4221", "invalid byte size")

	// ErrInvalidBody indicates the request body is not a valid message object.
	ErrInvalidBody = NewDomainError("SS-ARG-4222", "invalid request body")
)

// Storage errors (STOR).
var (
	// ErrStorage wraps a failure reported by the underlying store.
	ErrStorage = NewDomainError("SS-STOR-5001", "storage error")

	// ErrMessageSize indicates a stored blob is not exactly 192 bytes.
	ErrMessageSize = NewDomainError("SS-STOR-5002", "incorrect size")

	// ErrMessageType indicates the store returned a non-binary value.
	ErrMessageType = NewDomainError("SS-STOR-5003", "incorrect type")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected server failure.
	ErrInternal = NewDomainError("SS-SYS-5000", "internal server error")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SS-SYS-4290", "too many requests")
)
