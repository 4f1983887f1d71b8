package rtcos

import (
	"errors"
	"fmt"
)

// ErrorCode is a high-level category for a scheduler error, mirroring the
// RTCOS_ERR_* enum of the original implementation.
type ErrorCode string

const (
	ErrCodeOutOfResources ErrorCode = "out of resources"
	ErrCodeInUse          ErrorCode = "in use"
	ErrCodeOutOfRange     ErrorCode = "out of range"
	ErrCodeNotFound       ErrorCode = "not found"
	ErrCodeTooManyEvents  ErrorCode = "too many events"
	ErrCodeNoEvent        ErrorCode = "no event"
	ErrCodeInvalidTask    ErrorCode = "invalid task"
	ErrCodeMsgFull        ErrorCode = "message queue full"
	ErrCodeMsgEmpty       ErrorCode = "message queue empty"
	ErrCodeArg            ErrorCode = "invalid argument"
)

// Error is a structured scheduler error carrying the failing operation,
// the task it concerns (if any), its category, and a human-readable
// message.
type Error struct {
	Op     string    // operation that failed, e.g. "SendEvent"
	TaskID int       // task id involved, -1 if not applicable
	Code   ErrorCode // high-level error category
	Msg    string    // human-readable message
	Inner  error     // wrapped error, if any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.TaskID >= 0 {
		return fmt.Sprintf("rtcos: %s: %s (task=%d)", e.Op, msg, e.TaskID)
	}
	return fmt.Sprintf("rtcos: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates a structured error not tied to a specific task.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, TaskID: -1, Code: code, Msg: msg}
}

// NewTaskError creates a structured error concerning a specific task.
func NewTaskError(op string, taskID int, code ErrorCode, msg string) *Error {
	return &Error{Op: op, TaskID: taskID, Code: code, Msg: msg}
}

// WrapError wraps inner with operation context, preserving its code if
// inner is already a structured *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if re, ok := inner.(*Error); ok {
		return &Error{Op: op, TaskID: re.TaskID, Code: re.Code, Msg: re.Msg, Inner: re.Inner}
	}
	return &Error{Op: op, TaskID: -1, Code: ErrCodeArg, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a structured *Error whose Code matches
// code.
func IsCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

var (
	// ErrOutOfResources indicates a fixed-size table had no free slot.
	ErrOutOfResources = NewError("", ErrCodeOutOfResources, "")
	// ErrNotFound indicates a lookup (timer, future event) found nothing.
	ErrNotFound = NewError("", ErrCodeNotFound, "")
)
