// Package apperr defines the domain error taxonomy and its mapping to HTTP
// status codes. Repositories and services return *Error values; the handler
// boundary is the only place that turns a Kind into a response status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindInactiveAccount
	KindNotFound
	KindConflict
)

// String returns the human readable error type sent to clients
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation Error"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInactiveAccount:
		return "Inactive Account"
	case KindNotFound:
		return "Not Found"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal Server Error"
	}
}

// HTTPStatus maps a Kind to its response status. Conflicts (duplicate signup
// email) and inactive accounts are reported as 400.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindInactiveAccount, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified domain error
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed input
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthorized reports a missing, invalid or expired credential
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// InactiveAccount reports a deactivated user
func InactiveAccount() *Error {
	return &Error{Kind: KindInactiveAccount, Message: "Inactive user"}
}

// NotFound reports a resource that is absent or owned by someone else
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict reports a uniqueness violation
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected failure. The message is safe to show clients.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
