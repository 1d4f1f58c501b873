package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PolicyViolation indicates the query matched an abuse pattern
	// (injection, SQL, code execution, sensitive info, data theft, bulk
	// extraction). The reason string stays generic and never echoes the
	// offending pattern back to the caller.
	PolicyViolation ErrorCode = "POLICY_VIOLATION"
	// RateLimited indicates the per-minute or per-hour query cap was hit.
	// Surfaced distinctly from PolicyViolation so callers can back off
	// without triggering abuse bookkeeping.
	RateLimited ErrorCode = "RATE_LIMITED"
	// UserBlocked indicates the user is temporarily blocked. No remaining
	// duration is exposed.
	UserBlocked ErrorCode = "USER_BLOCKED"
	// QueryTooShort indicates the query is below the minimum length
	QueryTooShort ErrorCode = "QUERY_TOO_SHORT"
	// QueryTooLong indicates the query exceeds the maximum length
	QueryTooLong ErrorCode = "QUERY_TOO_LONG"
	// UpstreamFailure indicates a collaborator call (retrieval, generation) failed
	UpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
	// InternalError indicates an unexpected error; the security gate
	// treats it as a denial (fail closed)
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// OrionError represents an Orion error with a stable code and message
type OrionError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new OrionError
func New(code ErrorCode, message string, cause error) *OrionError {
	return &OrionError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *OrionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *OrionError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *OrionError) WithDetails(details interface{}) *OrionError {
	e.Details = details
	return e
}

// CodeOf returns the error code of err, or InternalError when err carries
// no OrionError in its chain.
func CodeOf(err error) ErrorCode {
	var oe *OrionError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
