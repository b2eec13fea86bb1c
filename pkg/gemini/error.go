package gemini

import "errors"

// Kind partitions provider failures into the two classes callers act on:
// back off (rate limited) or report and give up (generic).
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindGeneric     Kind = "generic"
)

// Error is the structured failure surfaced by the Gemini adapter.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindGeneric
	}
	return e.kind
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsError extracts an adapter Error from a chain, or nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsRateLimited reports whether the chain carries a quota/rate signal.
func IsRateLimited(err error) bool {
	typed := AsError(err)
	return typed != nil && typed.Kind() == KindRateLimited
}
