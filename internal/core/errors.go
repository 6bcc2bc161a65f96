package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatExecution  ErrorCategory = "execution"  // Provider runtime failure
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatQuota      ErrorCategory = "quota"      // Daily tier quota exhausted
	ErrCatConsensus  ErrorCategory = "consensus"  // Too few responses to deliberate
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrModelFailed creates an execution error scoped to one provider call.
func ErrModelFailed(model string, cause error) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      CodeModelFailed,
		Message:   fmt.Sprintf("model %s failed", model),
		Retryable: true,
		Cause:     cause,
		Details:   map[string]interface{}{"model": model},
	}
}

// ErrModelTimeout creates a timeout error scoped to one provider call.
func ErrModelTimeout(model string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      CodeModelTimeout,
		Message:   fmt.Sprintf("model %s timed out", model),
		Retryable: true,
		Details:   map[string]interface{}{"model": model},
	}
}

// ErrTierLimitExceeded creates the terminal quota error. It stops the
// pipeline before dispatch and is never retried.
func ErrTierLimitExceeded(tier Tier, used, limit int) *DomainError {
	return &DomainError{
		Category:  ErrCatQuota,
		Code:      CodeTierLimit,
		Message:   fmt.Sprintf("tier %s used %d of %d council queries today", tier, used, limit),
		Retryable: false,
		Details: map[string]interface{}{
			"tier":  string(tier),
			"used":  used,
			"limit": limit,
		},
	}
}

// ErrInsufficientResponses is raised when successes fall below the minimum
// needed for synthesis. The caller must route to the documented fallback.
func ErrInsufficientResponses(got, min int) *DomainError {
	return &DomainError{
		Category:  ErrCatConsensus,
		Code:      CodeInsufficientResponses,
		Message:   fmt.Sprintf("only %d of the required %d model responses succeeded", got, min),
		Retryable: true,
		Details: map[string]interface{}{
			"got": got,
			"min": min,
		},
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// ErrInternal creates an internal error.
func ErrInternal(message string, cause error) *DomainError {
	return &DomainError{
		Category:  ErrCatInternal,
		Code:      "INTERNAL",
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeModelFailed           = "MODEL_FAILED"
	CodeModelTimeout          = "MODEL_TIMEOUT"
	CodeTierLimit             = "TIER_LIMIT_EXCEEDED"
	CodeInsufficientResponses = "INSUFFICIENT_RESPONSES"
	CodeNoModels              = "NO_MODELS"
	CodeEmptyQuery            = "EMPTY_QUERY"
	CodeQueryTooLong          = "QUERY_TOO_LONG"
	CodeInvalidConfig         = "INVALID_CONFIG"
)

// MaxQueryLength is the maximum allowed query length.
const MaxQueryLength = 100000
