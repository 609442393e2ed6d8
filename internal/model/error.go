package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeNetwork            = "NETWORK_ERROR"
	ErrCodeInvalidPromoCode   = "INVALID_PROMO_CODE"
	ErrCodeInvalidPromoLength = "INVALID_PROMO_LENGTH"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-level failure carrying a stable code.
// Two domain errors match under errors.Is when their codes are equal, so a
// field-specific validation error still matches ErrValidation.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a field-specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewInvalidTransitionError describes a rejected status change.
func NewInvalidTransitionError(from, to Status, role Role) *DomainError {
	return NewDomainError(ErrCodeInvalidTransition,
		"transition from "+quote(string(from))+" to "+quote(string(to))+" is not allowed for role "+quote(string(role)))
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	return `"` + s + `"`
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(ErrCodeValidation, "Request failed validation")
	ErrInvalidTransition  = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrNetwork            = NewDomainError(ErrCodeNetwork, "Backend request failed")
	ErrInvalidPromoCode   = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not recognised")
	ErrInvalidPromoLength = NewDomainError(ErrCodeInvalidPromoLength, "Promo code must be between 8 and 10 characters")
	ErrProductUnavailable = NewDomainError(ErrCodeProductUnavailable, "Product is not available")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid username or password")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Role is not permitted to perform this action")
	ErrInvalidQuantity    = NewDomainError(ErrCodeValidation, "Quantity must be greater than zero")
)
