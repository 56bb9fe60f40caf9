// Package errors provides structured errors carrying a machine-readable code.
//
// Every failure surfaced by beanctl is a *StructuredError so that callers can
// branch on the failure class (a malformed command, an argument that could not
// be coerced, a bean the agent does not know) without string matching:
//
//	if errors.CodeOf(err) == errors.ErrCodeCoercionFailed {
//		...
//	}
//
// StructuredError implements Unwrap, so the standard library errors.Is and
// errors.As keep working through the cause chain.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
	ErrCodeUnavailable    ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"

	// ErrCodeMalformedCommand is returned when a command token does not
	// match the name[=arg,...] grammar.
	ErrCodeMalformedCommand ErrorCode = "MALFORMED_COMMAND"
	// ErrCodeFeatureNotFound is returned when a name matches neither an
	// attribute nor an operation of the bean.
	ErrCodeFeatureNotFound ErrorCode = "FEATURE_NOT_FOUND"
	// ErrCodeArityMismatch is returned when the argument count does not
	// match the attribute or operation signature.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"
	// ErrCodeUnsupportedType is returned when a declared type has no
	// string conversion.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	// ErrCodeCoercionFailed is returned when an argument is not a valid
	// literal of its declared type.
	ErrCodeCoercionFailed ErrorCode = "COERCION_FAILED"

	// Remote failures reported by the management agent.
	ErrCodeRemoteNotFound     ErrorCode = "REMOTE_NOT_FOUND"
	ErrCodeRemoteTypeMismatch ErrorCode = "REMOTE_TYPE_MISMATCH"
	ErrCodeRemoteInvocation   ErrorCode = "REMOTE_INVOCATION_FAILURE"
)

// StructuredError is an error with a code, a message, an optional cause and
// optional key/value context used for diagnostics.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError without a cause.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Newf creates a StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a StructuredError wrapping cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext creates a StructuredError wrapping cause with additional context.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// WithContext returns a copy of err with the given key/value pairs merged
// into its context. Non-structured errors are wrapped as ErrCodeInternal.
func WithContext(err error, context map[string]any) error {
	if err == nil {
		return nil
	}
	var se *StructuredError
	if !stderrors.As(err, &se) {
		return WrapWithContext(ErrCodeInternal, "unexpected error", err, context)
	}
	merged := make(map[string]any, len(se.Context)+len(context))
	maps.Copy(merged, se.Context)
	maps.Copy(merged, context)
	return &StructuredError{Code: se.Code, Message: se.Message, Cause: se.Cause, Context: merged}
}

// CodeOf returns the code of the first StructuredError in err's chain, or
// ErrCodeInternal when there is none. A nil error has no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
