package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Set by middleware.LoggingMiddleware.
const requestIDKey = "request_id"

// ErrorResponse is the body of every error answer. RequestID echoes the
// X-Request-ID of the call.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondWithError writes an error answer; errorCode is one of codes.go.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	})
}

// Shorthands for the common answers

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Please sign in"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have access to this resource"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again shortly"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithUpstreamError relays a storefront API failure (see ParseError).
func RespondWithUpstreamError(c *gin.Context, err error, action string) {
	info := ParseError(err, action)
	RespondWithError(c, info.Status, info.Code, info.Message)
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:     ValidationInvalidInput,
		Message:   "Invalid input",
		Fields:    fields,
		RequestID: c.GetString(requestIDKey),
	})
}
