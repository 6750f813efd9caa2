package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidState          = "INVALID_STATE"
	CodeTransientDelivery     = "TRANSIENT_DELIVERY"
	CodeProviderConfiguration = "PROVIDER_CONFIGURATION"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped sentinel
// comparisons work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error with the given message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewInvalidStateError creates an INVALID_STATE error with the given message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewProviderConfigurationError creates a PROVIDER_CONFIGURATION error
func NewProviderConfigurationError(message string) *DomainError {
	return NewDomainError(CodeProviderConfiguration, message)
}

// NewTransientDeliveryError creates a TRANSIENT_DELIVERY error
func NewTransientDeliveryError(message string) *DomainError {
	return NewDomainError(CodeTransientDelivery, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrProviderConfig      = NewDomainError(CodeProviderConfiguration, "Messaging provider is not configured")
	ErrTransientDelivery   = NewDomainError(CodeTransientDelivery, "Message delivery failed")
)

// ErrorCode extracts the domain error code from err, or "" when err is not a
// domain error.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
