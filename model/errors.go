package model

import (
	"errors"
	"fmt"

	"xdao.co/roasort/roa"
	"xdao.co/roasort/storage"
)

type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrParse          ErrorCode = "PARSE"
	ErrInvalidRange   ErrorCode = "INVALID_RANGE"
	ErrDecode         ErrorCode = "DECODE"
	ErrFormat         ErrorCode = "FORMAT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrCIDMismatch    ErrorCode = "CID_MISMATCH"
	ErrInternal       ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Classify reduces any pipeline or archive failure to a CodedError, so JSON
// and RPC boundaries expose a stable code instead of an error string to match
// on. Unrecognized errors classify as ErrInternal.
func Classify(err error) *CodedError {
	if err == nil {
		return nil
	}
	var re *roa.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case roa.KindParse:
			return NewError(ErrParse, err.Error())
		case roa.KindInvalidRange:
			return NewError(ErrInvalidRange, err.Error())
		case roa.KindDecode:
			return NewError(ErrDecode, err.Error())
		case roa.KindFormat:
			return NewError(ErrFormat, err.Error())
		}
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewError(ErrNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidCID):
		return NewError(ErrInvalidRequest, err.Error())
	case errors.Is(err, storage.ErrCIDMismatch), errors.Is(err, storage.ErrImmutable):
		return NewError(ErrCIDMismatch, err.Error())
	}
	return NewError(ErrInternal, err.Error())
}

// InputError reports whether the classified failure was caused by the input
// itself rather than the system processing it.
func (e *CodedError) InputError() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case ErrParse, ErrInvalidRange, ErrDecode, ErrFormat, ErrInvalidRequest:
		return true
	}
	return false
}
