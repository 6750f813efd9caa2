package dto

import (
	"net/http"

	"github.com/motorshop/backend/internal/domain/shared"
)

// Error codes carried in the response envelope. Domain codes pass through
// unchanged so clients see the same code the service produced.
const (
	ErrCodeValidation            = shared.CodeValidation
	ErrCodeNotFound              = shared.CodeNotFound
	ErrCodeInvalidState          = shared.CodeInvalidState
	ErrCodeTransientDelivery     = shared.CodeTransientDelivery
	ErrCodeProviderConfiguration = shared.CodeProviderConfiguration
	ErrCodeConcurrencyConflict   = shared.CodeConcurrencyConflict
	ErrCodeUnauthorized          = shared.CodeUnauthorized
	ErrCodeForbidden             = shared.CodeForbidden

	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeBadRequest:            http.StatusBadRequest,
	ErrCodeProviderConfiguration: http.StatusBadRequest,
	ErrCodeUnauthorized:          http.StatusUnauthorized,
	ErrCodeForbidden:             http.StatusForbidden,
	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeTooLarge:              http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:           http.StatusTooManyRequests,
	ErrCodeTransientDelivery:     http.StatusBadGateway,
	ErrCodeInternal:              http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
