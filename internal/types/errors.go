package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a namespaced error code for boardroom errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_PROVIDER_MISSING  ErrorCode = "CONFIG_PROVIDER_MISSING"
)

// Database error codes
const (
	DB_OPEN_FAILED      ErrorCode = "DB_OPEN_FAILED"
	DB_MIGRATION_FAILED ErrorCode = "DB_MIGRATION_FAILED"
	DB_QUERY_FAILED     ErrorCode = "DB_QUERY_FAILED"
)

// Meeting and agent error codes
const (
	MEETING_NOT_FOUND    ErrorCode = "MEETING_NOT_FOUND"
	MEETING_NOT_COMPLETE ErrorCode = "MEETING_NOT_COMPLETE"
	VERSION_NOT_FOUND    ErrorCode = "VERSION_NOT_FOUND"
	AGENT_NOT_FOUND      ErrorCode = "AGENT_NOT_FOUND"
	USER_NOT_FOUND       ErrorCode = "USER_NOT_FOUND"
	FILE_NOT_FOUND       ErrorCode = "FILE_NOT_FOUND"
	NO_AGENTS_HIRED      ErrorCode = "NO_AGENTS_HIRED"
	NO_ACTIVE_AGENTS     ErrorCode = "NO_ACTIVE_AGENTS"
	NOT_AUTHORIZED       ErrorCode = "NOT_AUTHORIZED"
)

// BoardError is a structured error with a code, message, and optional cause.
// It supports error wrapping and carries a retryability hint for callers
// that distinguish transient provider failures from permanent ones.
type BoardError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if a cause exists.
func (e *BoardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *BoardError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is against sentinel codes.
func (e *BoardError) Is(target error) bool {
	var boardErr *BoardError
	if errors.As(target, &boardErr) {
		return e.Code == boardErr.Code
	}
	return false
}

// NewError creates a non-retryable BoardError.
func NewError(code ErrorCode, message string) *BoardError {
	return &BoardError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a retryable BoardError for transient failures.
func NewRetryableError(code ErrorCode, message string) *BoardError {
	return &BoardError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a non-retryable BoardError wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *BoardError {
	return &BoardError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a BoardError.
func CodeOf(err error) ErrorCode {
	var boardErr *BoardError
	if errors.As(err, &boardErr) {
		return boardErr.Code
	}
	return ""
}
