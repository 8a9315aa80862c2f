// Package apierror provides the API error envelope and the mapping from
// domain errors to HTTP statuses.
package apierror

import (
	"errors"
	"net/http"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// APIError represents a standardized API error response.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error with additional details.
func (e *APIError) WithDetails(details any) *APIError {
	return &APIError{Code: e.Code, Message: e.Message, StatusCode: e.StatusCode, Details: details}
}

// WithMessage returns a copy of the error with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{Code: e.Code, Message: message, StatusCode: e.StatusCode, Details: e.Details}
}

var (
	ErrUnauthorized = &APIError{
		Code:       "unauthorized",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &APIError{
		Code:       "forbidden",
		Message:    "You don't have permission to perform this action",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &APIError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &APIError{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrRateLimited = &APIError{
		Code:       "rate_limited",
		Message:    "Too many requests. Please try again later.",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrQuotaExceeded = &APIError{
		Code:       "quota_exceeded",
		Message:    "Site limit reached for your account",
		StatusCode: http.StatusPaymentRequired,
	}

	ErrConflict = &APIError{
		Code:       "conflict",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	ErrPayloadTooLarge = &APIError{
		Code:       "payload_too_large",
		Message:    "Request body is too large",
		StatusCode: http.StatusRequestEntityTooLarge,
	}

	ErrInternal = &APIError{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &APIError{
		Code:       "service_unavailable",
		Message:    "Service temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}
)

// NewValidationErrors creates a validation error with field-keyed messages.
func NewValidationErrors(fields map[string]string) *APIError {
	return &APIError{
		Code:       "validation_error",
		Message:    "One or more fields failed validation",
		StatusCode: http.StatusBadRequest,
		Details:    fields,
	}
}

// NewNotFoundError creates a not found error for a specific resource type.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "not_found",
		Message:    resource + " not found",
		StatusCode: http.StatusNotFound,
	}
}

// AsAPIError converts any error into an APIError. Domain errors keep their
// meaning; anything unrecognized becomes ErrInternal with no details.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return NewValidationErrors(validationErr.Fields.Map())
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrPayloadTooLarge
	}

	var notReady *domain.NotReadyError
	if errors.As(err, &notReady) {
		return &APIError{
			Code:       "not_ready",
			Message:    "Site is not ready to be published",
			StatusCode: http.StatusConflict,
			Details:    notReady.Report,
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidFormat):
		return &APIError{Code: "invalid_subdomain", Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, domain.ErrReserved):
		return &APIError{Code: "reserved_subdomain", Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, domain.ErrNamespaceExhausted):
		return &APIError{Code: "namespace_exhausted", Message: "No subdomain is available for this name", StatusCode: http.StatusConflict}
	case errors.Is(err, domain.ErrQuotaExceeded):
		return ErrQuotaExceeded
	case errors.Is(err, domain.ErrUnauthorized):
		return ErrForbidden
	case errors.Is(err, domain.ErrInvalidTemplate):
		return NewNotFoundError("Template")
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrUserExists):
		return ErrConflict.WithMessage(err.Error())
	}
	return ErrInternal
}
