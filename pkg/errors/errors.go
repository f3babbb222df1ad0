// Package errors implements FinchDB's tagged-error design. Every error the
// storage engine raises carries a Code for programmatic dispatch plus
// the file/line/function of the call site that raised it, the Go analogue
// of the original storage engine's FLF (file, line, function) exception
// macro.
package errors

import (
	"fmt"
	"runtime"
)

// Error is FinchDB's error type. It is never constructed directly; use New
// or Wrap so the call site is captured automatically.
type Error struct {
	cause    error
	code     Code
	message  string
	file     string
	line     int
	function string
	details  map[string]any
}

// New creates an Error tagged with code, capturing the caller's site.
func New(code Code, msg string) *Error {
	return newAt(nil, code, msg, 2)
}

// Wrap creates an Error tagged with code around an existing error,
// capturing the caller's site.
func Wrap(cause error, code Code, msg string) *Error {
	return newAt(cause, code, msg, 2)
}

func newAt(cause error, code Code, msg string, skip int) *Error {
	e := &Error{cause: cause, code: code, message: msg}
	if pc, file, line, ok := runtime.Caller(skip); ok {
		e.file = file
		e.line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.function = fn.Name()
		}
	}
	return e
}

// WithDetail attaches an arbitrary key/value pair of debugging context.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// WithPath records the partition file path involved in the failure.
func (e *Error) WithPath(path string) *Error {
	return e.WithDetail("path", path)
}

// WithPageIndex records the page index involved in the failure.
func (e *Error) WithPageIndex(idx uint32) *Error {
	return e.WithDetail("page_index", idx)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s:%d %s): %s", e.code, e.file, e.line, e.function, e.message)
}

// Unwrap exposes the wrapped cause so errors.Is/As can traverse it.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error's taxonomy code.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the bare user-facing message, without the code/site
// prefix Error() adds for logs.
func (e *Error) Message() string {
	return e.message
}

// coded is satisfied by *Error and anything embedding it (e.g.
// *PartitionFullError), since Code()/Message() are promoted methods.
type coded interface {
	Code() Code
	Message() string
}

// Message returns err's bare user-facing message if it is (or wraps) a
// *Error, or err.Error() otherwise.
func Message(err error) string {
	for err != nil {
		if e, ok := err.(coded); ok {
			return e.Message()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Details returns the attached debugging context, if any.
func (e *Error) Details() map[string]any {
	return e.details
}

// HasCode reports whether the first *Error (or embedder of one, e.g.
// *PartitionFullError) found in err's Unwrap chain is tagged with code.
// Coded errors wrapped beneath that first one are not consulted.
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(coded); ok {
			return e.Code() == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return false
}
