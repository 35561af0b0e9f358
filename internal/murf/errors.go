package murf

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies provider failures.
type ErrorCode string

const (
	ErrorCodeAuth             ErrorCode = "AUTH"
	ErrorCodeRateLimit        ErrorCode = "RATE_LIMIT"
	ErrorCodeNetwork          ErrorCode = "NETWORK"
	ErrorCodeUnsupportedVoice ErrorCode = "UNSUPPORTED_VOICE"
	ErrorCodeServer           ErrorCode = "SERVER"
)

// ProviderError is a synthesis provider failure with enough context for a
// caller to decide between retrying, switching voices, and giving up.
type ProviderError struct {
	Code       ErrorCode
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the same request may succeed later.
func (e *ProviderError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeRateLimit, ErrorCodeNetwork, ErrorCodeServer:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP response status to an error code.
func classifyStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeAuth
	case status == http.StatusTooManyRequests:
		return ErrorCodeRateLimit
	case status == http.StatusBadRequest || status == http.StatusNotFound ||
		status == http.StatusUnprocessableEntity:
		return ErrorCodeUnsupportedVoice
	default:
		return ErrorCodeServer
	}
}

// AsProviderError unwraps err into a ProviderError, if it is one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
