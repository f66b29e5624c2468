package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form PM-<AREA>-<NNNN>; the last four digits encode the
// HTTP status class the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "PM-CONN-4040")
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

// ============================================================================
// Connection Errors (CONN)
// ============================================================================

var (
	// ErrAlreadyConnected indicates the destination identifier is already
	// claimed by a live connection.
	ErrAlreadyConnected = NewDomainError("PM-CONN-4090", "destination already connected")

	// ErrNotConnected indicates no live connection is registered for the
	// destination identifier.
	ErrNotConnected = NewDomainError("PM-CONN-4040", "destination not connected")

	// ErrDeliveryFailed indicates the message could not be enqueued because
	// the connection is tearing down. Callers may retry.
	ErrDeliveryFailed = NewDomainError("PM-CONN-5020", "delivery failed")

	// ErrInvalidDestination indicates a malformed destination identifier.
	ErrInvalidDestination = NewDomainError("PM-CONN-4001", "invalid destination id")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("PM-SYS-5000", "internal server error")

	// ErrRegistryUnavailable indicates the connection registry cannot be
	// accessed, either because it was closed for shutdown or because a
	// registry operation panicked.
	ErrRegistryUnavailable = NewDomainError("PM-SYS-5030", "connection registry unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("PM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("PM-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("PM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("PM-ARG-1002", "missing required argument")
)
