package roa

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings;
// Error() strings are intended for humans and may evolve.
type Kind string

const (
	// KindParse marks a malformed text line or numeric literal.
	KindParse Kind = "Parse"
	// KindInvalidRange marks a supplied max length below the prefix length.
	KindInvalidRange Kind = "InvalidRange"
	// KindDecode marks malformed DER/ASN.1 input.
	KindDecode Kind = "Decode"
	// KindFormat marks a structurally valid object of the wrong shape:
	// an unexpected object identifier, an unknown address-family tag, or
	// missing encapsulated content.
	KindFormat Kind = "Format"
)

// Error is the package's structured error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, cause error) error {
	if cause == nil {
		return newError(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
