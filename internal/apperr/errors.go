// Package apperr defines the error taxonomy shared by services and the HTTP layer.
// Callers match sentinels with errors.Is and classify with KindOf.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary.
type Kind int

const (
	Internal Kind = iota
	Unauthorized
	NotFound
	Conflict
	Validation
	Upstream
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Validation:
		return "validation_error"
	case Upstream:
		return "upstream_failure"
	default:
		return "internal_failure"
	}
}

// Error carries a Kind, a message safe to show to clients and an optional cause.
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Fields map[string]string // per-field problems, validation only

	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether e was derived from target via Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.base != nil && e.base == t
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a cause to a sentinel, keeping the sentinel's kind and message.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Msg: sentinel.Msg, Err: cause, base: sentinel}
}

var (
	// token service
	ErrInvalidToken          = New(Unauthorized, "Invalid token")
	ErrExpiredOrInvalidToken = New(Unauthorized, "Invalid or expired token")

	// session guard
	ErrMissingCredential = New(Unauthorized, "No token provided")
	ErrInvalidCredential = New(Unauthorized, "Invalid or expired credential")
	ErrUnknownUser       = New(Unauthorized, "User not found")

	// bookmarks
	ErrDuplicateBookmark = New(Conflict, "Article already bookmarked")
	ErrBookmarkNotFound  = New(NotFound, "Bookmark not found")

	ErrNotFound = New(NotFound, "Not found")
	ErrUpstream = New(Upstream, "Failed to fetch articles")
	ErrInternal = New(Internal, "Internal server error")
)

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

// Invalid builds a validation error carrying per-field messages.
func Invalid(msg string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Msg: msg, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// PublicMessage returns the client-facing message for err. Internal errors never
// expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return ErrInternal.Msg
}
