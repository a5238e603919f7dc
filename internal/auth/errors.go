package auth

import (
	"errors"
	"net/http"
)

// Kind is the fixed set of failure classes the service reports to clients.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
	KindNotFound
	KindUnauthorized
)

const defaultInternalMessage = "Internal server error"

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindInvalidInput: "invalid_input",
	KindConflict:     "conflict",
	KindNotFound:     "not_found",
	KindUnauthorized: "unauthorized",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindInternal]
}

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput, KindConflict, KindUnauthorized:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message is the literal client message for the kind.
func (k Kind) Message() string {
	switch k {
	case KindInvalidInput:
		return "All fields are required"
	case KindConflict:
		return "Email or username already taken"
	case KindNotFound:
		return "Email not registered"
	case KindUnauthorized:
		return "Invalid password"
	default:
		return defaultInternalMessage
	}
}

// Error is a classified failure. Only Internal errors carry a cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Status is the HTTP status for the error.
func (e *Error) Status() int { return e.Kind.Status() }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict) holds
// for every conflict regardless of where it was produced.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput = newError(KindInvalidInput)
	ErrConflict     = newError(KindConflict)
	ErrNotFound     = newError(KindNotFound)
	ErrUnauthorized = newError(KindUnauthorized)
)

func newError(k Kind) *Error {
	return &Error{Kind: k, Message: k.Message()}
}

// Internal classifies an unexpected failure, keeping its message.
func Internal(err error) *Error {
	msg := defaultInternalMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Kind: KindInternal, Message: msg, cause: err}
}

// Classify maps any error onto the taxonomy. Errors that are already
// classified pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
