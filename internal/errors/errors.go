// Package errors defines the LFS gateway error taxonomy. Every rejection
// path maps to one of the predefined values, which carry the HTTP status
// and the plain-text body returned to the client.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a gateway error with a machine-readable code, the client-facing
// message and the HTTP status to respond with.
type Error struct {
	// Code is the error category (e.g., "Unauthorized", "BadRequest").
	Code string
	// Message is the plain-text response body. It never carries internal detail.
	Message string
	// HTTPStatus is the HTTP status code to return.
	HTTPStatus int
	// Err is the triggering condition. It is logged, never sent to the client.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.HTTPStatus, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Unwrap returns the triggering condition, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same category and message, so that
// errors.Is(err, ErrInvalidJSON) holds for copies made by WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message && e.HTTPStatus == t.HTTPStatus
}

// WithCause returns a copy of e carrying cause as the triggering condition.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Categories.
const (
	CodeNotFound     = "NotFound"
	CodeUnauthorized = "Unauthorized"
	CodeBadRequest   = "BadRequest"
	CodeInternal     = "InternalError"
)

// Pre-defined errors, one per rejection path.
var (
	// ErrNotFound is returned for unrecognized routes or methods.
	ErrNotFound = &Error{
		Code:       CodeNotFound,
		Message:    "Not Found",
		HTTPStatus: 404,
	}

	// ErrUnauthorized is returned when the Basic credential is missing or malformed.
	// Both cases share the same response.
	ErrUnauthorized = &Error{
		Code:       CodeUnauthorized,
		Message:    "Unauthorized",
		HTTPStatus: 401,
	}

	// ErrInvalidBucketFormat is returned when the address segment is not <bucket>.<endpoint>.
	ErrInvalidBucketFormat = &Error{
		Code:       CodeBadRequest,
		Message:    "Invalid bucket format",
		HTTPStatus: 400,
	}

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = &Error{
		Code:       CodeBadRequest,
		Message:    "Invalid JSON",
		HTTPStatus: 400,
	}

	// ErrUnsupportedOperation is returned for operations other than upload and download.
	ErrUnsupportedOperation = &Error{
		Code:       CodeBadRequest,
		Message:    "Unsupported operation",
		HTTPStatus: 400,
	}

	// ErrInternalError is returned for any unanticipated failure.
	ErrInternalError = &Error{
		Code:       CodeInternal,
		Message:    "Internal Server Error",
		HTTPStatus: 500,
	}
)

// From classifies err. A *Error anywhere in the chain is returned as is;
// anything else becomes ErrInternalError with err attached as the cause.
func From(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return ErrInternalError.WithCause(err)
}
