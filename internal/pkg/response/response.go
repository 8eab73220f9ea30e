// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "tably-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response. Raw storage errors are never
// forwarded: the error string is only included for taxonomy sentinels the
// client is allowed to see.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil && isClientSafe(err) {
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}

// FromError maps a taxonomy sentinel onto its HTTP status and sends the
// response. Anything outside the taxonomy is treated as internal: the caller
// gets a generic retryable failure, never storage error text.
func FromError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, xerrors.ErrValidation):
		Error(c, http.StatusBadRequest, message, err)
	case errors.Is(err, xerrors.ErrInsufficientBalance):
		Error(c, http.StatusBadRequest, message, err)
	case errors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, message, err)
	case errors.Is(err, xerrors.ErrNotOwned):
		Error(c, http.StatusForbidden, message, err)
	case errors.Is(err, xerrors.ErrPasscodeExhausted), errors.Is(err, xerrors.ErrConflict):
		Error(c, http.StatusConflict, message, err)
	default:
		Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func isClientSafe(err error) bool {
	for _, sentinel := range []error{
		xerrors.ErrValidation,
		xerrors.ErrNotFound,
		xerrors.ErrNotOwned,
		xerrors.ErrInsufficientBalance,
		xerrors.ErrPasscodeExhausted,
		xerrors.ErrConflict,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// Accepted sends a 202 for fire-and-forget operations.
func Accepted(c *gin.Context, message string) {
	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Message: message,
	})
}
