package tonnikala

import (
	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// Error is the error type returned by all output operations.
type Error = errors.Error

// ErrorKind describes the type of error that occurred.
type ErrorKind = errors.ErrorKind

// DebugInfo carries traversal details for depth and fuel errors.
type DebugInfo = errors.DebugInfo

const (
	ErrInvalidOperand        = errors.ErrInvalidOperand
	ErrSelfReference         = errors.ErrSelfReference
	ErrLockedState           = errors.ErrLockedState
	ErrInvalidState          = errors.ErrInvalidState
	ErrOutOfMemory           = errors.ErrOutOfMemory
	ErrRecursionLimit        = errors.ErrRecursionLimit
	ErrEscapeFunctionMissing = errors.ErrEscapeFunctionMissing
	ErrOutOfFuel             = errors.ErrOutOfFuel
)

// NewError creates a new error with the given kind and message.
func NewError(kind ErrorKind, msg string) *Error {
	return errors.NewError(kind, msg)
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return errors.IsKind(err, kind)
}
