package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

// ErrorInfo is the client-facing form of an error.
type ErrorInfo struct {
	Status  int    // HTTP status to answer with
	Code    string // error code (see codes.go)
	Message string // user-facing message
}

// ParseError turns a storefront API failure into the answer relayed to the
// client. Auth, not-found, conflict and validation statuses pass through with
// the API's own message; everything else becomes a 502.
func ParseError(err error, action string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	if status, ok := upstream.AsStatus(err); ok {
		return parseStatusError(status, action)
	}

	switch {
	case errors.Is(err, upstream.ErrMalformedBody):
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    UpstreamMalformed,
			Message: "The store returned an unreadable response",
		}
	case errors.Is(err, upstream.ErrUnavailable), isTimeout(err):
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    UpstreamUnavailable,
			Message: "The store is unavailable. Please try again shortly",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(action),
	}
}

func parseStatusError(e *upstream.StatusError, action string) ErrorInfo {
	message := e.Message

	switch e.StatusCode {
	case http.StatusUnauthorized:
		if message == "" {
			message = "Please sign in"
		}
		return ErrorInfo{Status: http.StatusUnauthorized, Code: AuthUnauthorized, Message: message}
	case http.StatusForbidden:
		if message == "" {
			message = "You do not have access to this resource"
		}
		return ErrorInfo{Status: http.StatusForbidden, Code: AuthzForbidden, Message: message}
	case http.StatusNotFound:
		if message == "" {
			message = getNotFoundMessage(action)
		}
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: message}
	case http.StatusConflict:
		if message == "" {
			message = "The resource was changed by another request"
		}
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: message}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = "Invalid input"
		}
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: message}
	}

	return ErrorInfo{
		Status:  http.StatusBadGateway,
		Code:    UpstreamBadStatus,
		Message: getDefaultErrorMessage(action),
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// getNotFoundMessage picks a not-found message from the failed action.
func getNotFoundMessage(action string) string {
	actionLower := strings.ToLower(action)

	switch {
	case strings.Contains(actionLower, "cart item"):
		return "Cart item not found"
	case strings.Contains(actionLower, "cart"):
		return "Cart not found"
	case strings.Contains(actionLower, "product"):
		return "Product not found"
	case strings.Contains(actionLower, "order"):
		return "Order not found"
	case strings.Contains(actionLower, "favorite"):
		return "Favorite not found"
	case strings.Contains(actionLower, "report"):
		return "Report not found"
	}
	return "The requested resource was not found"
}

// getDefaultErrorMessage picks a generic failure message from the failed action.
func getDefaultErrorMessage(action string) string {
	actionLower := strings.ToLower(action)

	switch {
	case strings.Contains(actionLower, "add"), strings.Contains(actionLower, "create"):
		return "Could not save your change. Please try again shortly"
	case strings.Contains(actionLower, "update"):
		return "Could not update. Please try again shortly"
	case strings.Contains(actionLower, "remove"), strings.Contains(actionLower, "delete"):
		return "Could not remove. Please try again shortly"
	}
	return "Something went wrong. Please try again shortly"
}
