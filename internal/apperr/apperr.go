// Package apperr defines the error kinds returned by the service layer.
//
// Every domain failure is an *Error whose message is safe to show to the
// caller and whose kind can be tested with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidReference = errors.New("invalid reference")
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrInvalidInput     = errors.New("invalid input")
)

var kinds = []error{
	ErrNotFound,
	ErrForbidden,
	ErrInvalidState,
	ErrInvalidDateRange,
	ErrInvalidReference,
	ErrDuplicateEmail,
	ErrInvalidInput,
}

// Error pairs a kind with a human readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an *Error of the given kind.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt formatting.
func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or nil when err is not a domain error.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Label returns a short snake_case name for the kind of err, used in metrics
// and structured logs.
func Label(err error) string {
	switch KindOf(err) {
	case ErrNotFound:
		return "not_found"
	case ErrForbidden:
		return "forbidden"
	case ErrInvalidState:
		return "invalid_state"
	case ErrInvalidDateRange:
		return "invalid_date_range"
	case ErrInvalidReference:
		return "invalid_reference"
	case ErrDuplicateEmail:
		return "duplicate_email"
	case ErrInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}
