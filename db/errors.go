package db

import (
	"errors"
	"fmt"
)

// Error kinds, checked with errors.Is
var (
	ErrValidation     = errors.New("validation error")
	ErrDuplicateClass = errors.New("class already exists")
	ErrClassInUse     = errors.New("class in use")
	ErrNotFound       = errors.New("not found")
	ErrCorruptState   = errors.New("corrupt state")
	ErrPersist        = errors.New("persist failed")
)

// Error is returned by roster operations. Kind is one of the Err* values above.
type Error struct {
	Op      string // e.g. "AddClass", "Load"
	Kind    error
	Message string
	Err     error // underlying cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches the error kind as well as the wrapped cause.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func newError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(op string, kind error, message string, err error) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// Message returns the human-readable part of a roster error, or err.Error()
// for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
