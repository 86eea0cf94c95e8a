package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies errors raised by the assistant core.
type ErrorType string

const (
	// ErrorTypeNotFound indicates no entity survived any cascade stage
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeLowConfidence indicates the best match came from a fuzzy or
	// semantic stage only; callers should hedge
	ErrorTypeLowConfidence ErrorType = "LOW_CONFIDENCE"

	// ErrorTypeIndexUnavailable indicates full-text index creation failed
	ErrorTypeIndexUnavailable ErrorType = "INDEX_UNAVAILABLE"

	// ErrorTypeProviderUnavailable indicates an external provider failed
	ErrorTypeProviderUnavailable ErrorType = "PROVIDER_UNAVAILABLE"

	// ErrorTypeProviderTimeout indicates an external provider exceeded its deadline
	ErrorTypeProviderTimeout ErrorType = "PROVIDER_TIMEOUT"

	// ErrorTypeConnectivityGap indicates no adjacency path between two entities
	ErrorTypeConnectivityGap ErrorType = "CONNECTIVITY_GAP"

	// ErrorTypeValidation indicates a malformed request
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewLowConfidenceError creates a new low confidence error
func NewLowConfidenceError(message string) *AppError {
	return &AppError{Type: ErrorTypeLowConfidence, Message: message}
}

// NewIndexUnavailableError creates a new index unavailable error
func NewIndexUnavailableError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeIndexUnavailable, Message: message, Err: err}
}

// NewProviderUnavailableError creates a new provider unavailable error
func NewProviderUnavailableError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeProviderUnavailable, Message: message, Err: err}
}

// NewProviderTimeoutError creates a new provider timeout error
func NewProviderTimeoutError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeProviderTimeout, Message: message, Err: err}
}

// NewConnectivityGapError creates a new connectivity gap error
func NewConnectivityGapError(message string) *AppError {
	return &AppError{Type: ErrorTypeConnectivityGap, Message: message}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExternal, Message: message, Err: err}
}
