// Package errors defines the error type shared by the output construction
// packages.
package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorKind describes the type of error.
type ErrorKind int

const (
	ErrInvalidOperand ErrorKind = iota
	ErrSelfReference
	ErrLockedState
	ErrInvalidState
	ErrOutOfMemory
	ErrRecursionLimit
	ErrEscapeFunctionMissing
	ErrOutOfFuel
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidOperand:
		return "invalid operand"
	case ErrSelfReference:
		return "self reference"
	case ErrLockedState:
		return "locked state"
	case ErrInvalidState:
		return "invalid state"
	case ErrOutOfMemory:
		return "out of memory"
	case ErrRecursionLimit:
		return "recursion limit exceeded"
	case ErrEscapeFunctionMissing:
		return "escape function missing"
	case ErrOutOfFuel:
		return "out of fuel"
	default:
		return "error"
	}
}

// Error is returned by ropes, buffers and flatteners.
type Error struct {
	Kind      ErrorKind
	Message   string
	Op        string // operation that failed, e.g. "rope.append"
	DebugInfo *DebugInfo
	cause     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind. A target with a
// message only matches errors carrying the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Format implements fmt.Formatter. The %+v verb includes debug info and
// the cause chain.
func (e *Error) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			formatErrorWithDebug(f, e, true)
			return
		}
		_, _ = fmt.Fprint(f, e.Error())
	case 's':
		_, _ = fmt.Fprint(f, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(f, "%q", e.Error())
	}
}

// NewError creates a new error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates a new error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithOp records the failing operation.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// WithDebugInfo attaches traversal details.
func (e *Error) WithDebugInfo(info *DebugInfo) *Error {
	e.DebugInfo = info
	return e
}

// Kind returns the kind of err if it is (or wraps) an *Error.
func Kind(err error) (ErrorKind, bool) {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := Kind(err)
	return ok && k == kind
}
