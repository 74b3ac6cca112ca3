// Package apperr defines the error kinds that cross the service boundary.
//
// Every precondition failure surfaces as one of five kinds so that callers
// (and the HTTP layer) can react without string matching:
//
//   - Validation: the input violates a stated rule; retrying unchanged won't help.
//   - NotFound: a referenced entity does not exist.
//   - Forbidden: the caller is authenticated but lacks authority over the target.
//   - Conflict: concurrent state change made the request invalid (e.g. activity full).
//   - Unavailable: a backing dependency (store, directory) failed; distinct from NotFound.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindConflict    Kind = "conflict"
	KindUnavailable Kind = "unavailable"
)

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two apperr errors by kind, so sentinel-style checks like
// errors.Is(err, apperr.Validationf("")) work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a Validation error.
func Validationf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Forbiddenf builds a Forbidden error.
func Forbiddenf(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Unavailable wraps a dependency failure.
func Unavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, cause: cause}
}

// KindOf reports the kind of err, or "" when err is not an apperr error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
