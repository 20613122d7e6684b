package errors

import "github.com/pkg/errors"

// StackTracer is implemented by errors that carry a captured stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer tags an error with one of the package's error codes and makes
// sure a stack trace travels with the cause. The code is the error message,
// so log lines stay grep-able by code.
type ErrorTracer struct {
	Code ErrorCode
	Err  error
}

// NewTracer creates an ErrorTracer for the given code. Attach the cause with
// Wrap; a tracer without a cause is a valid error on its own.
func NewTracer(code ErrorCode) *ErrorTracer {
	return &ErrorTracer{Code: code}
}

func (e *ErrorTracer) Error() string {
	return string(e.Code)
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap attaches the cause, capturing a stack trace at the wrap site unless
// the cause already carries one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.Err = err
		return e
	}
	e.Err = errors.WithStack(err)
	return e
}

// StackTrace returns the cause's stack trace, or nil without a cause.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if cause, ok := e.Err.(StackTracer); ok {
		return cause.StackTrace()
	}
	return nil
}
