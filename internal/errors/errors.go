package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// Unauthenticated creates an UNAUTHENTICATED error
func Unauthenticated(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthenticated,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// InvalidTarget creates an INVALID_TARGET error for rejected follow targets
// (self-follows and follows of one's own story).
func InvalidTarget(message string) *APIError {
	return &APIError{
		Code:    ErrInvalidTarget,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// FeedFetchFailed creates a FEED_FETCH_FAILED error carrying the underlying cause
func FeedFetchFailed(err error) *APIError {
	return &APIError{
		Code:    ErrFeedFetchFailed,
		Message: "failed to resolve feed",
		Details: err.Error(),
		Status:  http.StatusBadGateway,
	}
}

// EdgeWriteFailed creates an EDGE_WRITE_FAILED error for follow edge mutations
func EdgeWriteFailed(err error) *APIError {
	return &APIError{
		Code:    ErrEdgeWriteFailed,
		Message: "failed to update follow relationship",
		Details: err.Error(),
		Status:  http.StatusBadGateway,
	}
}
