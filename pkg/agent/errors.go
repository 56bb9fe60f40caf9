package agent

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

// Remote exception classes, by simple name, that mean the target does not exist.
var notFoundExceptions = map[string]bool{
	"InstanceNotFoundException":  true,
	"AttributeNotFoundException": true,
	"NoSuchMethodException":      true,
	"OperationsException":        true,
}

// Remote exception classes that mean a value had the wrong type.
var typeMismatchExceptions = map[string]bool{
	"InvalidAttributeValueException": true,
	"IllegalArgumentException":       true,
	"ClassCastException":             true,
	"NumberFormatException":          true,
}

// remoteError converts an agent error document into a structured error.
func remoteError(status int, errorType, message string) error {
	if message == "" {
		message = "agent request failed"
	}
	ctx := map[string]any{"status": status}
	if errorType != "" {
		ctx["errorType"] = errorType
	}

	code := errors.ErrCodeRemoteInvocation
	simple := errorType[strings.LastIndexByte(errorType, '.')+1:]
	switch {
	case notFoundExceptions[simple]:
		code = errors.ErrCodeRemoteNotFound
	case typeMismatchExceptions[simple]:
		code = errors.ErrCodeRemoteTypeMismatch
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = errors.ErrCodeUnauthorized
	case errorType == "" && status == http.StatusNotFound:
		code = errors.ErrCodeRemoteNotFound
	}

	return errors.WrapWithContext(code, message, nil, ctx)
}

// transportError classifies a failed round trip.
func transportError(endpoint string, err error) error {
	ctx := map[string]any{"endpoint": endpoint}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapWithContext(errors.ErrCodeTimeout, "agent request timed out", err, ctx)
	default:
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "agent unreachable", err, ctx)
	}
}

// oversizeError reports a response body longer than the transport accepts.
func oversizeError(endpoint string, limit int64) error {
	return errors.WrapWithContext(errors.ErrCodeInternal, "agent response exceeds limit", nil,
		map[string]any{"endpoint": endpoint, "limitBytes": limit})
}

// statusError classifies a non-2xx HTTP response that carried no agent
// error document.
func statusError(endpoint string, status int) error {
	ctx := map[string]any{"endpoint": endpoint, "status": status}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.WrapWithContext(errors.ErrCodeUnauthorized, "agent rejected credentials", nil, ctx)
	default:
		return errors.WrapWithContext(errors.ErrCodeUnavailable, http.StatusText(status), nil, ctx)
	}
}
