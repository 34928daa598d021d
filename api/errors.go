package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service error taxonomy. Handlers translate
// them to HTTP status codes; everything unrecognized becomes a generic
// 500 with no internal detail in the body.
var (
	// ErrNotFound means no record exists for the requested id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the supplied credential is missing or does
	// not match the stored one.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAdminTokenNotSet means no admin secret is configured; all
	// admin access fails closed with a setup hint.
	ErrAdminTokenNotSet = errors.New("admin token not configured")
)

// ValidationError reports bad or missing input, naming the offending
// field so the storefront can surface it.
type ValidationError struct {
	Msg string
}

// Error returns the validation message.
func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RequestError provides structured error information for HTTP
// responses: an HTTP status code plus the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}
