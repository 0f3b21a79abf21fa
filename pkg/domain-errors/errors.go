// Package domainerrors defines the coded error type every service returns.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate them
// into a coded *Error with a stable, client-safe message. Transport layers map
// the code to a status without inspecting messages.
package domainerrors

import (
	"errors"
)

// Code is a stable, machine-readable error kind.
type Code string

const (
	// CodeUnauthorized means no actor identity was presented.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the role or location check failed on a write path.
	CodeForbidden Code = "forbidden"
	// CodeNotFound covers both absent and access-filtered resources.
	CodeNotFound Code = "not_found"
	// CodeValidation covers rejected client data (duplicate labels, disallowed
	// file types, identifying free text, oversize files).
	CodeValidation Code = "validation_error"
	// CodeInvalidState means the entity is in the wrong lifecycle state.
	CodeInvalidState Code = "invalid_state"
	// CodeExternalService wraps failures of outbound collaborators.
	CodeExternalService Code = "external_service_error"
	CodeConflict        Code = "conflict"
	CodeBadRequest      Code = "bad_request"
	CodeTimeout         Code = "timeout"
	CodeInternal        Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to clients.
type Error struct {
	Code    Code
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

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and client-safe message to an underlying error.
// The cause stays reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// As extracts the outermost *Error from the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost coded error carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias for HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of err, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
