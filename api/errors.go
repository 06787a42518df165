// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by raw segments, segment references, sequences and
// their I/O adapters.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Sentinel errors. Every *Error unwraps to exactly one of them.
var (
	ErrOutOfMemory    = errors.New("buffer: out of memory")
	ErrEndOfBuffer    = errors.New("buffer: end of buffer")
	ErrMalformedInput = errors.New("buffer: malformed input")
	ErrUnsupported    = errors.New("buffer: operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeOutOfMemory
	ErrCodeEndOfBuffer
	ErrCodeMalformedInput
	ErrCodeUnsupported
)

// String returns the short name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeOutOfMemory:
		return "out_of_memory"
	case ErrCodeEndOfBuffer:
		return "end_of_buffer"
	case ErrCodeMalformedInput:
		return "malformed_input"
	case ErrCodeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Sentinel returns the sentinel error matching the code, or nil for ErrCodeOK.
func (c ErrorCode) Sentinel() error {
	switch c {
	case ErrCodeOutOfMemory:
		return ErrOutOfMemory
	case ErrCodeEndOfBuffer:
		return ErrEndOfBuffer
	case ErrCodeMalformedInput:
		return ErrMalformedInput
	case ErrCodeUnsupported:
		return ErrUnsupported
	default:
		return nil
	}
}

// Error represents a structured error with code and context.
// Errno is set when the error wraps an OS error code.
type Error struct {
	Code    ErrorCode
	Message string
	Errno   syscall.Errno
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.Sentinel().Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Errno != 0 {
		msg += ": " + e.Errno.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes both the sentinel and, when present, the OS errno, so that
// errors.Is works against either.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Code.Sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Errno != 0 {
		out = append(out, e.Errno)
	}
	return out
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new structured error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// ErrnoError wraps an OS error code as MalformedInput. Non-errno errors are
// wrapped with their text only.
func ErrnoError(op string, err error) *Error {
	e := NewError(ErrCodeMalformedInput, op)
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Errno = errno
	} else if err != nil {
		e.Message = op + ": " + err.Error()
	}
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeOK when err is not
// (and does not wrap) an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeOK
}
