package errors

import "errors"

// Well-known error codes shared across domains.
const (
	CodeInvalidInput     = "invalid_input"
	CodeNotFound         = "not_found"
	CodeStorageError     = "storage_error"
	CodeProviderError    = "provider_error"
	CodeUnauthorized     = "unauthorized"
	CodeEmbeddingError   = "embedding_error"
	CodeCompletionError  = "completion_error"
	CodeRoutingError     = "routing_error"
	CodeIngestionError   = "ingestion_error"
	CodeInternalError    = "internal_error"
	CodeServiceDisabled  = "service_disabled"
	CodeRateLimitReached = "rate_limit_exceeded"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps callers differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the code from an AppError, or empty for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
