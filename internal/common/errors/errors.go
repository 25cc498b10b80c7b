// Package errors provides the standardized error taxonomy returned to HTTP clients.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Directory errors
const (
	ErrCodeActivityNotFound  ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeNotRegistered     ErrorCode = "NOT_REGISTERED"
)

// Request, configuration and delivery errors
const (
	ErrCodeMissingParameter       ErrorCode = "MISSING_PARAMETER"
	ErrCodeMethodNotAllowed       ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeCatalogInvalid         ErrorCode = "CATALOG_INVALID"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message is the
// client-facing detail; Details stays in the logs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status the error is surfaced with.
func (e *StandardError) StatusCode() int {
	return HTTPStatus(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError reports an activity name that is not in the directory.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyRegisteredError reports a duplicate signup.
func NewAlreadyRegisteredError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyRegistered,
		Message:   fmt.Sprintf("%s is already signed up", email),
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotRegisteredError reports an unregister for an email not on the roster.
func NewNotRegisteredError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotRegistered,
		Message:   fmt.Sprintf("%s is not signed up", email),
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingParameterError reports a required query parameter that was absent or blank.
func NewMissingParameterError(param string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingParameter,
		Message:   fmt.Sprintf("%s query parameter is required", param),
		Details:   fmt.Sprintf("parameter: %s", param),
		Timestamp: time.Now().UTC(),
	}
}

// NewMethodNotAllowedError reports a known route requested with the wrong method.
func NewMethodNotAllowedError(method, path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method Not Allowed",
		Details:   fmt.Sprintf("%s %s", method, path),
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError reports a seed catalog that failed validation.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Activity catalog is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError reports a notifier that could not deliver an event.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Metadata:  map[string]interface{}{"channel": channel},
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps error codes onto response status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound:       http.StatusNotFound,
	ErrCodeAlreadyRegistered:      http.StatusBadRequest,
	ErrCodeNotRegistered:          http.StatusBadRequest,
	ErrCodeMissingParameter:       http.StatusUnprocessableEntity,
	ErrCodeMethodNotAllowed:       http.StatusMethodNotAllowed,
	ErrCodeCatalogInvalid:         http.StatusInternalServerError,
	ErrCodeNotificationSendFailed: http.StatusBadGateway,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// HTTPStatus returns the status for code, or 500 for unknown codes.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize returns err as a *StandardError, wrapping foreign errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Utility Functions
// ==========================

// IsClientError reports whether the code is caused by the request rather than the server.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatus(code)
	return status >= 400 && status < 500
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ACTIVITY") || strings.Contains(codeStr, "REGISTERED"):
		return "DIRECTORY"
	case strings.Contains(codeStr, "PARAMETER") || strings.Contains(codeStr, "METHOD"):
		return "REQUEST"
	case strings.Contains(codeStr, "CATALOG"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
