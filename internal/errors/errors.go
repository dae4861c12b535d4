// Package errors classifies faults for the HTTP boundary of the FJORD
// solve service. Handlers build classified errors, the transport layer
// maps their codes onto response statuses, and the middleware in this
// package turns panics and error statuses into log entries.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Code classifies an error for transport mapping.
type Code string

const (
	// CodeInvalid marks a malformed or unsupported request.
	CodeInvalid Code = "invalid"
	// CodeNotFound marks a request naming a resource that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a request racing with the state of its target.
	CodeConflict Code = "conflict"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error carries a classification code, a message, an optional operation
// and cause, and the stack captured at construction.
type Error struct {
	Code    Code
	Message string
	Op      string
	Err     error
	Stack   []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithOp tags the error with the operation that produced it.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// New creates a classified error with a message.
func New(code Code, msg string) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Stack:   stack(),
	}
}

// Newf creates a classified error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   stack(),
	}
}

// Wrap classifies an existing error, keeping it reachable through
// errors.Is and errors.As. Wrapping nil returns nil.
func Wrap(err error, code Code, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: msg,
		Err:     err,
		Stack:   stack(),
	}
}

// CodeOf returns the classification of err: the code of the first
// *Error in its chain, CodeInternal for any other non-nil error, and
// the empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error's classification onto an HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// stack returns the construction-site stack as a slice of strings,
// skipping runtime frames and this package's own frames.
func stack() []string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") && !strings.Contains(frame.File, "internal/errors") {
			out = append(out, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return out
}
