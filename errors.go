package sqlite

import (
	"errors"
	"fmt"
)

// Error is a failed native call. Code is the result code returned by the
// library and Message the text it reported.
type Error struct {
	Code    Code
	Message string
	Op      string

	// Err is the row callback error that aborted the statement, if any.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("sqlite: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("sqlite: %s: %s (%s)", e.Op, e.Message, e.Code)
}

// Unwrap returns the callback error that caused an abort.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same primary code.
// This allows errors.Is(err, &sqlite.Error{Code: sqlite.CodeBusy}).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code.Primary() == t.Code.Primary()
	}
	return false
}

// StateError reports an operation attempted in the wrong connection state.
// No native call is made when one is returned.
type StateError string

func (e StateError) Error() string {
	return "sqlite: " + string(e)
}

// Connection state errors
const (
	ErrNotConnected StateError = "not connected"
	ErrAlreadyOpen  StateError = "connection already open"
	ErrReleased     StateError = "connection released"
)

// ValueError reports an argument or setting that cannot be used.
type ValueError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("sqlite: invalid %s %#v: %s", e.Name, e.Value, e.Reason)
}

// RangeError reports a Table lookup outside the table or with an
// argument of the wrong type.
type RangeError struct {
	Arg   string
	Value any
	Max   int
}

func (e *RangeError) Error() string {
	switch e.Value.(type) {
	case string:
		return fmt.Sprintf("sqlite: %s %q not found", e.Arg, e.Value)
	case int:
		return fmt.Sprintf("sqlite: %s %d out of range [1, %d]", e.Arg, e.Value, e.Max)
	}
	return fmt.Sprintf("sqlite: %s of type %T is not usable as an index", e.Arg, e.Value)
}

// UnimplementedError reports a dispatch that no typed operation or
// enabled raw call can serve.
type UnimplementedError struct {
	Op  string
	Err error
}

func (e *UnimplementedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sqlite: %s is not implemented: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sqlite: %s is not implemented", e.Op)
}

func (e *UnimplementedError) Unwrap() error {
	return e.Err
}

// report decides whether a native result code is a failure. msg is the
// error text that came with the call, nil when none was supplied.
// Informational codes without a message pass through unchanged.
func report(code Code, msg *string) (Code, *Error) {
	if code == CodeOK {
		return code, nil
	}
	if msg == nil && code.Informational() {
		return code, nil
	}
	e := &Error{Code: code, Message: code.String()}
	if msg != nil {
		e.Message = *msg
	}
	return code, e
}

// IsBusy reports whether err is a native SQLITE_BUSY failure.
func IsBusy(err error) bool {
	return hasCode(err, CodeBusy)
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return hasCode(err, CodeConstraint)
}

func hasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code.Primary() == code
}
