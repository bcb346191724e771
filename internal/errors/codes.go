package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for pipeline operations.
type ErrorCode string

const (
	// ErrCodeInvalidRecord indicates a memory record missing required identity fields.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeStoreUnavailable indicates the record store could not be reached.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeCacheUnavailable indicates the cache backend rejected an operation.
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// PipelineError represents a structured error for context assembly operations.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// InvalidRecord creates an invalid record error.
func InvalidRecord(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeInvalidRecord, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeInvalidArgument, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeStoreUnavailable, Message: "record store unavailable", Cause: cause}
}

// CacheUnavailable creates a cache unavailable error.
func CacheUnavailable(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeCacheUnavailable, Message: "cache unavailable", Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *PipelineError {
	return &PipelineError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error, or any error it wraps, carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a PipelineError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return defaultCode
}
