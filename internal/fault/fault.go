// Package fault defines the error taxonomy shared by all core
// operations. Every failure carries a stable machine-checkable kind
// and code plus a human-readable message; storage details stay
// wrapped and are never shown to callers.
package fault

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches an underlying cause without exposing it in the
// message seen by callers.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(KindUnauthorized, code, message)
}

func Internal(code string, err error) *Error {
	return Wrap(KindInternal, code, "internal error", err)
}

// KindOf reports the taxonomy kind of err, or KindUnknown for errors
// raised outside the taxonomy.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// CodeOf reports the stable code of err, or "" when err is not a
// taxonomy error.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
