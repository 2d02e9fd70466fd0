package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies provider failures so callers can distinguish
// configuration problems from transient backend trouble.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeModel     ErrorType = "model"
	ErrorTypeEndpoint  ErrorType = "endpoint"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a structured provider error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried by the caller
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Provider   string    // Provider name if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured provider error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// This consolidates classification logic for consistent handling.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	// Authentication errors (not retryable)
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") {
		provErr = NewError(ErrorTypeAuth, "authentication failed", false, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Model not found (not retryable without config change)
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		provErr = NewError(ErrorTypeModel, "model not found", false, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Timeout and deadline exceeded (retryable by the caller)
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled") {
		provErr = NewError(ErrorTypeTimeout, "request timeout", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Connection errors (may be retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		provErr = NewError(ErrorTypeEndpoint, "connection failed", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Rate limiting (retryable after backoff)
	if strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") {
		provErr = NewError(ErrorTypeRateLimit, "rate limited", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// 5xx server errors (retryable)
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		provErr = NewError(ErrorTypeEndpoint, "server error", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	provErr = NewError(ErrorTypeUnknown, "provider error", false, err)
	provErr.StatusCode = statusCode
	return provErr
}

// IsRetryable returns true if the error is retryable by the caller.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Type
	}
	return ErrorTypeUnknown
}
