// Package apperr classifies failures into the small set of outcome
// categories the HTTP layer knows how to answer. Business-rule
// violations are expected, user-correctable outcomes and map to 4xx;
// only genuinely unexpected failures become 500s.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the failure category attached to an Error.
type Kind int

const (
	// Validation covers malformed or missing input and broken
	// business rules (bad enum value, employee count too low).
	Validation Kind = iota

	// Conflict covers uniqueness violations.
	Conflict

	// NotFound covers absent referenced records.
	NotFound

	// Authorization covers role or ownership mismatches.
	Authorization

	// Authentication covers bad credentials or tokens.
	Authentication

	// Upstream covers media-host or mail-delivery failures.
	Upstream

	// Internal covers unexpected store failures.
	Internal
)

// Error carries a user-facing message, a category, and an optional
// underlying cause. The cause is for logs; it never reaches clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Status maps an error to its HTTP status. Unclassified errors are
// treated as internal.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Authorization:
		return http.StatusForbidden
	case Authentication:
		return http.StatusUnauthorized
	case Upstream, Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the stable user-facing message for an error.
// Unclassified errors get a generic message so store or media-host
// details never leak.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went wrong, please try again"
}
