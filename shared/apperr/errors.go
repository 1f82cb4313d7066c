// Package apperr defines the error kinds shared by every service.
//
// Services return *Error values whose Kind is one of the sentinels below.
// The HTTP layer maps the kind to a status code and only ever shows Message
// to the client; the wrapped cause is for server-side logs.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAuthentication    = errors.New("authentication error")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPersistence       = errors.New("persistence error")
	ErrConflict          = errors.New("conflict")
)

// Error carries a kind, a user-safe message and an optional internal cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) error        { return newError(ErrValidation, msg, nil) }
func NotFound(msg string) error          { return newError(ErrNotFound, msg, nil) }
func Forbidden(msg string) error         { return newError(ErrForbidden, msg, nil) }
func Authentication(msg string) error    { return newError(ErrAuthentication, msg, nil) }
func InsufficientFunds(msg string) error { return newError(ErrInsufficientFunds, msg, nil) }
func Conflict(msg string) error          { return newError(ErrConflict, msg, nil) }

// Persistence wraps a storage failure. cause is logged, never returned to clients.
func Persistence(msg string, cause error) error {
	return newError(ErrPersistence, msg, cause)
}

// Message returns the user-facing text of err, or fallback when err is not an *Error.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// Code returns a stable machine-readable code for the kind of err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrAuthentication):
		return "authentication_error"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}
