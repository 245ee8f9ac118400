package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the storefront API could not be reached
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrStatus matches any *StatusError
	ErrStatus = errors.New("upstream returned an error status")

	// ErrMalformedBody is returned when a 2xx body is not the JSON we expected
	ErrMalformedBody = errors.New("malformed upstream response body")

	// ErrInvalidConfig is returned by New for an unusable configuration
	ErrInvalidConfig = errors.New("invalid upstream client config")
)

// StatusError carries a non-2xx response from the storefront API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// AsStatus unwraps err into a *StatusError when it carries one.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	if se, ok := AsStatus(err); ok {
		return se.StatusCode
	}
	return 0
}

// errorMessage pulls a human readable message out of the API's error envelopes
// ({"message"}, {"Message"}, {"title"}, {"error"}).
func errorMessage(body []byte) string {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	for _, key := range []string{"message", "Message", "title", "Title", "error", "Error"} {
		if s, ok := envelope[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
