package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorDetail is the wire representation of a single error.
type ErrorDetail struct {
	Message         string         `json:"message,omitempty"`
	InternalMessage string         `json:"internal_message,omitempty"`
	Details         map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the JSON body returned for failed API requests.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the wire representation for an error. The internal
// message is only included for validation and not-found errors; everything
// else gets the hint (or a generic message) to avoid leaking internals.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	detail := ErrorDetail{
		Message: HintFromErr(err),
		Details: DetailsFromErr(err),
	}
	if detail.Message == "" {
		detail.Message = "An unexpected error occurred"
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		detail.InternalMessage = err.Error()
	}

	return &ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps an error's marker to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrHTTPClient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
