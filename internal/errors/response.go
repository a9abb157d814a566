package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorDetail is the client-visible description of an error.
type ErrorDetail struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the uniform error envelope rendered by the HTTP layer.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// NewErrorResponse builds the client-safe envelope for err. Internal error
// text is never leaked; only the hint and reportable details cross the wire.
func NewErrorResponse(err error) *ErrorResponse {
	detail := &ErrorDetail{Message: "An unexpected error occurred"}

	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Hint() != "" {
			detail.Message = ie.Hint()
		}
		detail.Details = ie.ReportableDetails()
	}

	return &ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps an error's mark to the HTTP status the API returns.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsInvalidOperation(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusForbidden
	case IsSignature(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
