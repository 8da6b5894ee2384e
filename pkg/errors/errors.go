package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the failure classes the fetch pipeline distinguishes
type ErrorType string

const (
	ErrorTypeCredentials       ErrorType = "credentials"
	ErrorTypeAuthentication    ErrorType = "authentication"
	ErrorTypeRateLimit         ErrorType = "rate_limit"
	ErrorTypeRequest           ErrorType = "request"
	ErrorTypeDownload          ErrorType = "download"
	ErrorTypeCorruptCheckpoint ErrorType = "corrupt_checkpoint"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// Error represents a classified pipeline error
type Error struct {
	Type    ErrorType
	Message string
	// Code is the HTTP status when one was received, 0 otherwise
	Code int
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// TypeOf returns the type of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsFatal reports whether an error type must abort the whole run.
// Everything else degrades a single page, record or platform.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeCredentials, ErrorTypeAuthentication:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode reports whether the catalog client retries a status.
// Only rate-limit rejections are retried, and only a bounded number of times.
func IsRetryableStatusCode(statusCode int) bool {
	return statusCode == 429
}
