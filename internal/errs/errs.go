// Package errs provides the single fallible-return error type used
// throughout the decoder. Every failure path returns an *Error instead
// of panicking or using a sentinel string, each tagged with one of
// three failure categories.
package errs

import (
	"fmt"

	"github.com/go-stack/stack"
)

// Kind categorizes a decode failure.
type Kind int

const (
	// KindStructural covers container-level failures: bad signature,
	// wrong chunk order, CRC mismatch, unexpected end of stream.
	KindStructural Kind = iota
	// KindValidation covers IHDR/PLTE field validation failures.
	KindValidation
	// KindDeflate covers malformed DEFLATE/zlib bitstreams.
	KindDeflate
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindValidation:
		return "validation"
	case KindDeflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// Error is the decoder's error type. It carries the failure Kind, a
// human-readable message, an optional wrapped cause, and the call
// stack at the point of construction.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
	Stack   CallStack
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("png: %s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("png: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// CallStack is a captured, runtime-trimmed call stack.
type CallStack []StackFrame

// StackFrame identifies one call frame.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

func captureStack() CallStack {
	trace := stack.Trace().TrimRuntime()
	if len(trace) > 2 {
		trace = trace[2:] // drop the captureStack and newError frames
	}
	frames := make(CallStack, len(trace))
	for i, call := range trace {
		frame := call.Frame()
		frames[i] = StackFrame{
			File:     frame.File,
			Line:     frame.Line,
			Function: frame.Function,
		}
	}
	return frames
}

func newError(kind Kind, wrapped error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   captureStack(),
	}
}

// Structural builds a KindStructural error.
func Structural(format string, args ...interface{}) error {
	return newError(KindStructural, nil, format, args...)
}

// StructuralWrap builds a KindStructural error wrapping cause.
func StructuralWrap(cause error, format string, args ...interface{}) error {
	return newError(KindStructural, cause, format, args...)
}

// Validation builds a KindValidation error.
func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, nil, format, args...)
}

// Deflate builds a KindDeflate error.
func Deflate(format string, args ...interface{}) error {
	return newError(KindDeflate, nil, format, args...)
}

// DeflateWrap builds a KindDeflate error wrapping cause.
func DeflateWrap(cause error, format string, args ...interface{}) error {
	return newError(KindDeflate, cause, format, args...)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}
