package vin

import (
	"errors"
	"fmt"
)

// Code identifies the kind of VIN failure.
type Code string

const (
	CodeRequired   Code = "ERR_REQUIRED"
	CodeType       Code = "ERR_TYPE"
	CodeLength     Code = "ERR_LENGTH"
	CodeChars      Code = "ERR_CHARS"
	CodeCheckDigit Code = "ERR_CHECKDIGIT"
	CodeUnknown    Code = "ERR_UNKNOWN"
)

// Sentinel errors, one per code. Any *Error with the same code matches them
// under errors.Is.
var (
	ErrRequired   = &Error{Code: CodeRequired, Message: "VIN is required"}
	ErrType       = &Error{Code: CodeType, Message: "VIN must be a string"}
	ErrLength     = &Error{Code: CodeLength, Message: "VIN must be exactly 17 characters"}
	ErrChars      = &Error{Code: CodeChars, Message: "VIN contains invalid characters (I, O and Q are not allowed)"}
	ErrCheckDigit = &Error{Code: CodeCheckDigit, Message: "VIN check digit is invalid"}
	ErrUnknown    = &Error{Code: CodeUnknown, Message: "VIN decode failed"}
)

// Error is the single error type returned by Decode and CheckStructure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// newError builds an error for code c with the default message of its sentinel.
func newError(c Code, format string, args ...any) *Error {
	msg := defaultMessage(c)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: c, Message: msg}
}

func defaultMessage(c Code) string {
	for _, s := range []*Error{ErrRequired, ErrType, ErrLength, ErrChars, ErrCheckDigit, ErrUnknown} {
		if s.Code == c {
			return s.Message
		}
	}
	return ErrUnknown.Message
}

// CodeOf returns the code carried by err, or CodeUnknown when err is not a *Error.
func CodeOf(err error) Code {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeUnknown
}
