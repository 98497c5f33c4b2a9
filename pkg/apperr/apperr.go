// Package apperr defines typed application errors. Handlers map the
// kind of an error to an HTTP status without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindEngine             Kind = "ENGINE_ERROR"
	KindAlreadyProcessed   Kind = "ALREADY_PROCESSED"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Error is an error carrying a Kind and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func AlreadyProcessed(message string) *Error {
	return New(KindAlreadyProcessed, message)
}

func StorageUnavailable(message string, err error) *Error {
	return Wrap(KindStorageUnavailable, message, err)
}

func Engine(message string, err error) *Error {
	return Wrap(KindEngine, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
