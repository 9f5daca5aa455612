package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prototypeforge/aicxo/internal/types"
)

// LLM error codes.
const (
	ErrProviderNotFound     types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnavailable  types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"

	ErrInvalidRequest      types.ErrorCode = "LLM_INVALID_REQUEST"
	ErrCompletionFailed    types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrEmptyReply          types.ErrorCode = "LLM_EMPTY_REPLY"
	ErrReplyRefused        types.ErrorCode = "LLM_REPLY_REFUSED"
	ErrResponseParseFailed types.ErrorCode = "LLM_RESPONSE_PARSE_FAILED"
	ErrTimeoutExceeded     types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
	ErrNetworkFailed       types.ErrorCode = "LLM_NETWORK_FAILED"
)

// IsRetryable determines if an error is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var boardErr *types.BoardError
	if !errors.As(err, &boardErr) {
		return false
	}

	if boardErr.Retryable {
		return true
	}

	switch boardErr.Code {
	case ErrNetworkFailed, ErrProviderRateLimited, ErrProviderUnavailable, ErrTimeoutExceeded:
		return true
	default:
		return false
	}
}

// NewAuthError creates an authentication error for a provider.
func NewAuthError(provider string, cause error) *types.BoardError {
	return &types.BoardError{
		Code:    ErrProviderUnauthorized,
		Message: fmt.Sprintf("provider %q authentication failed", provider),
		Cause:   cause,
	}
}

// NewProviderUnavailableError creates a retryable error for a provider that
// is temporarily down.
func NewProviderUnavailableError(provider string, cause error) *types.BoardError {
	return &types.BoardError{
		Code:      ErrProviderUnavailable,
		Message:   "provider temporarily unavailable: " + provider,
		Retryable: true,
		Cause:     cause,
	}
}

// NewRateLimitError creates a retryable rate-limit error.
func NewRateLimitError(provider string) *types.BoardError {
	return &types.BoardError{
		Code:      ErrProviderRateLimited,
		Message:   "rate limit exceeded for provider: " + provider,
		Retryable: true,
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(message string) *types.BoardError {
	return &types.BoardError{
		Code:      ErrTimeoutExceeded,
		Message:   message,
		Retryable: true,
	}
}

// NewNetworkError creates a retryable network error.
func NewNetworkError(message string, cause error) *types.BoardError {
	return &types.BoardError{
		Code:      ErrNetworkFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewInvalidRequestError creates an error for a malformed completion request.
func NewInvalidRequestError(cause error) *types.BoardError {
	return types.WrapError(ErrInvalidRequest, "invalid completion request", cause)
}

// NewEmptyReplyError creates an error for a provider reply with no content.
func NewEmptyReplyError(provider string) *types.BoardError {
	return types.NewError(ErrEmptyReply, "provider "+provider+" returned an empty reply")
}

// TranslateError maps a raw provider error onto a coded error based on its
// message content. Errors that already carry a code pass through unchanged.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var boardErr *types.BoardError
	if errors.As(err, &boardErr) {
		return err
	}

	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") || strings.Contains(lowerMsg, "api key"):
		return NewAuthError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return NewRateLimitError(provider)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return NewTimeoutError(err.Error())
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(err.Error(), err)
	default:
		return NewProviderUnavailableError(provider, err)
	}
}
