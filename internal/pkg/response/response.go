// internal/pkg/response/response.go
package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

// Response defines the console's API envelope. It mirrors the backend's own
// envelope so pages can treat both the same way.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Meta    interface{}         `json:"meta,omitempty"`
	Error   string              `json:"error,omitempty"`
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

// Paginated sends a successful list response with pagination meta.
func Paginated(c *gin.Context, message string, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// CRITICAL: Abort FIRST before writing response
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil && code < http.StatusInternalServerError {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FieldErrors sends a 422 carrying per-field messages.
func FieldErrors(c *gin.Context, message string, fields map[string][]string) {
	c.Abort()
	c.JSON(http.StatusUnprocessableEntity, Response{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

// FromError answers with whatever err says about itself: the backend's
// status, message and field errors for *apiclient.Error, 502/504 for
// transport failures, the xerrors mapping otherwise.
func FromError(c *gin.Context, err error, fallback string) {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		c.Abort()
		c.JSON(status, Response{
			Success: false,
			Message: xerrors.MessageOrDefault(apiErr, fallback),
			Errors:  apiErr.Errors,
		})
		return
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusGatewayTimeout, "backend timed out", err)
	case apiclient.IsTransport(err) && !hasSentinel(err):
		Error(c, http.StatusBadGateway, xerrors.ErrUpstream.Error(), err)
	default:
		status := xerrors.HTTPStatus(err)
		msg := fallback
		if status < http.StatusInternalServerError {
			msg = xerrors.MessageOrDefault(err, fallback)
		}
		Error(c, status, msg, nil)
	}
}

func hasSentinel(err error) bool {
	return xerrors.HTTPStatus(err) != http.StatusInternalServerError
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}
