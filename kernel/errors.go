package kernel

import (
	"fmt"
	"runtime/debug"
)

// ErrorKind classifies kernel failures. Use errors.Is(err, kernel.ErrDegenerate).
type ErrorKind uint8

const (
	_ ErrorKind = iota
	// ErrInvalid is returned for malformed arguments.
	ErrInvalid
	// ErrDegenerate is returned when an operation would produce invalid geometry.
	ErrDegenerate
	// ErrNoFace is returned when face selection matches nothing.
	ErrNoFace
	// ErrDeleted is returned when a deleted object is used.
	ErrDeleted
	// ErrUnsupported is returned for operations a shape cannot take part in.
	ErrUnsupported
	// ErrInternal wraps a recovered kernel panic.
	ErrInternal
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrInvalid:
		return "invalid argument"
	case ErrDegenerate:
		return "degenerate geometry"
	case ErrNoFace:
		return "no matching face"
	case ErrDeleted:
		return "object deleted"
	case ErrUnsupported:
		return "unsupported"
	case ErrInternal:
		return "internal error"
	}
	return fmt.Sprintf("kernel error %d", uint8(k))
}

// Error is returned by every failing kernel operation.
type Error struct {
	Op     string
	Kind   ErrorKind
	Detail string
	stack  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "kernel: " + e.Op + ": " + e.Kind.Error()
	}
	return "kernel: " + e.Op + ": " + e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

// Stack returns the goroutine stack of a recovered panic, or the empty string.
func (e *Error) Stack() string { return e.stack }

func newError(op string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// guard converts a panic during op into an ErrInternal error. Must be deferred directly.
func guard(op string, err *error) {
	if a := recover(); a != nil {
		*err = &Error{
			Op:     op,
			Kind:   ErrInternal,
			Detail: fmt.Sprint(a),
			stack:  string(debug.Stack()),
		}
	}
}
