// Package errs defines the error kinds shared by the service and the HTTP layer.
//
// Errors carry an operation name and a kind. Callers test the kind with
// errors.Is(err, errs.ErrNotFound) and the HTTP layer maps kinds to status codes.
package errs

import (
	"errors"
	"strings"
)

// Sentinel error kinds.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error is an operation-scoped error with a kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// New returns an error of the given kind whose message is msg.
func New(op string, kind error, msg string) error {
	return &Error{Op: op, Kind: kind, Err: errors.New(msg)}
}

// NewKind returns a bare error of the given kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err with op and kind. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap wraps err with op and keeps the kind of err, defaulting to ErrInternal.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// KindOf reports the kind carried by err. Unknown errors are internal.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrConflict, ErrInternal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Message returns the human-readable part of err without operation prefixes.
func Message(err error) string {
	var e *Error
	for errors.As(err, &e) {
		if e.Err == nil {
			if e.Kind != nil {
				return e.Kind.Error()
			}
			return ""
		}
		err = e.Err
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
