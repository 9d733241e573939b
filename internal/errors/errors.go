package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode int

const (
	// Input validation
	ErrCodeInvalidKey    ErrorCode = 410
	ErrCodeNotANumber    ErrorCode = 411
	ErrCodeEmptyKey      ErrorCode = 412
	ErrCodeUnknownMethod ErrorCode = 413

	// Stream I/O
	ErrCodeSourceUnavailable ErrorCode = 520
	ErrCodeSinkUnavailable   ErrorCode = 521

	// API plumbing
	ErrCodeBadRequest   ErrorCode = 400
	ErrCodeUnauthorized ErrorCode = 401
	ErrCodeNotFound     ErrorCode = 404
	ErrCodeInternal     ErrorCode = 500
)

// Sentinels for errors.Is matching. Comparison is by code only.
var (
	ErrInvalidKey        = &AppError{Code: ErrCodeInvalidKey, Message: "invalid key", HTTPStatus: http.StatusBadRequest}
	ErrNotANumber        = &AppError{Code: ErrCodeNotANumber, Message: "key is not a number", HTTPStatus: http.StatusBadRequest}
	ErrEmptyKey          = &AppError{Code: ErrCodeEmptyKey, Message: "key is empty", HTTPStatus: http.StatusBadRequest}
	ErrUnknownMethod     = &AppError{Code: ErrCodeUnknownMethod, Message: "unknown method", HTTPStatus: http.StatusBadRequest}
	ErrSourceUnavailable = &AppError{Code: ErrCodeSourceUnavailable, Message: "source unavailable", HTTPStatus: http.StatusInternalServerError}
	ErrSinkUnavailable   = &AppError{Code: ErrCodeSinkUnavailable, Message: "sink unavailable", HTTPStatus: http.StatusInternalServerError}
	ErrBadRequest        = &AppError{Code: ErrCodeBadRequest, Message: "bad request", HTTPStatus: http.StatusBadRequest}
	ErrUnauthorized      = &AppError{Code: ErrCodeUnauthorized, Message: "unauthorized", HTTPStatus: http.StatusUnauthorized}
	ErrNotFound          = &AppError{Code: ErrCodeNotFound, Message: "not found", HTTPStatus: http.StatusNotFound}
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewInvalidKey creates an invalid key error
func NewInvalidKey(message string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidKey,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotANumber creates a key parse error for a non-numeric shift
func NewNotANumber(raw string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeNotANumber,
		Message:    fmt.Sprintf("shift key %q is not a valid integer", raw),
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewEmptyKey creates a key parse error for an empty XOR key
func NewEmptyKey(message string) *AppError {
	return &AppError{
		Code:       ErrCodeEmptyKey,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnknownMethod creates an error for a method with no registered cipher
func NewUnknownMethod(tag string) *AppError {
	return &AppError{
		Code:       ErrCodeUnknownMethod,
		Message:    fmt.Sprintf("unsupported cipher method: %s", tag),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewSourceUnavailable creates a source error for the named resource
func NewSourceUnavailable(resource string, cause error) *AppError {
	status := http.StatusInternalServerError
	if isNotExist(cause) {
		status = http.StatusNotFound
	}
	return &AppError{
		Code:       ErrCodeSourceUnavailable,
		Message:    fmt.Sprintf("could not read input %s", resource),
		HTTPStatus: status,
		Cause:      cause,
	}
}

// NewSinkUnavailable creates a sink error for the named resource
func NewSinkUnavailable(resource string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeSinkUnavailable,
		Message:    fmt.Sprintf("could not write output %s", resource),
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewBadRequest creates a bad request error
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewBadRequestWithCause creates a bad request error with cause
func NewBadRequestWithCause(message string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInternalWithCause creates an internal error with cause
func NewInternalWithCause(message string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ToHTTPStatus converts an error to HTTP status code
func ToHTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func isNotExist(err error) bool {
	return err != nil && stderrors.Is(err, fs.ErrNotExist)
}
