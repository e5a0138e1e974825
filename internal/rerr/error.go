// Package rerr defines the tagged error type shared by every layer of the
// client: codec, auth, reply parsing, the connection worker and the pool.
package rerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error the way RouterOS itself classifies failures:
// by where in the protocol they occurred, not by Go error type.
type Kind string

const (
	KindConnectionFailed Kind = "connection_failed"
	KindAuthFailed       Kind = "auth_failed"
	KindTrap             Kind = "trap"
	KindFatal            Kind = "fatal"
	KindTimeout          Kind = "timeout"
	KindClosed           Kind = "closed"
	KindProtocol         Kind = "protocol"
)

// Error is the single error type returned by every exported operation.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("routeros: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("routeros: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that carries an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithDetails attaches a details map to an Error, returning a new Error.
func (e *Error) WithDetails(details map[string]string) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, Cause: e.Cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
