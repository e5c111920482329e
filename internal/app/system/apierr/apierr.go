// Package apierr defines the error taxonomy shared by every JSON endpoint and
// maps it onto HTTP status codes.
//
// Handlers return (or wrap) one of the sentinel kinds, usually through the
// constructors below so a caller-facing detail message travels with it:
//
//	return apierr.NotFound("Assignment not found")
//
// Anything that is not one of these kinds is an internal failure and is
// reported as a generic 500 without leaking the underlying message.
package apierr

import (
	"errors"
	"net/http"
)

// Kinds.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrUnimplemented   = errors.New("unimplemented")
	ErrTooManyRequests = errors.New("too many requests")
)

// Error carries a kind plus the detail shown to the client.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, detail string) *Error { return &Error{Kind: kind, Detail: detail} }

func Unauthenticated(detail string) error { return newErr(ErrUnauthenticated, detail) }
func Forbidden(detail string) error { return newErr(ErrForbidden, detail) }
func NotFound(detail string) error { return newErr(ErrNotFound, detail) }
func Conflict(detail string) error { return newErr(ErrConflict, detail) }
func BadRequest(detail string) error { return newErr(ErrBadRequest, detail) }
func Unimplemented(detail string) error { return newErr(ErrUnimplemented, detail) }
func TooManyRequests(detail string) error { return newErr(ErrTooManyRequests, detail) }

// Status returns the HTTP status for err.
// Duplicate-email conflicts are reported as 400, matching the public API.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnimplemented):
		return http.StatusNotImplemented
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the client-facing message for err. Unclassified errors
// always yield "Internal server error".
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return http.StatusText(Status(err))
}
