package types

import "fmt"

// ErrorCode represents a unified error code across the orchestrator.
type ErrorCode string

// Submission errors, rejected synchronously before any job is created.
const (
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrEmptyBatch   ErrorCode = "EMPTY_BATCH"
)

// Item-level errors, caught at the per-item boundary and recorded on the
// item's outcome. They never abort the surrounding batch job.
const (
	ErrRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrProviderUnavailable  ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrProviderAuthFailed   ErrorCode = "PROVIDER_AUTH_FAILED"
	ErrProviderTimeout      ErrorCode = "PROVIDER_TIMEOUT"
	ErrContextTooLarge      ErrorCode = "CONTEXT_TOO_LARGE"
	ErrAllProvidersFailed   ErrorCode = "ALL_PROVIDERS_FAILED"
	ErrSynthesisUnavailable ErrorCode = "SYNTHESIS_UNAVAILABLE"
	ErrPersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
)

// Lookup errors
const (
	ErrJobNotFound         ErrorCode = "JOB_NOT_FOUND"
	ErrRequirementNotFound ErrorCode = "REQUIREMENT_NOT_FOUND"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error. Returns the empty
// code for plain errors.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
