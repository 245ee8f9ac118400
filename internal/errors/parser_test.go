package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		action     string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "unauthorized relayed",
			err:        &upstream.StatusError{StatusCode: 401, Message: "Token expired"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   AuthUnauthorized,
			wantMsg:    "Token expired",
		},
		{
			name:       "forbidden relayed",
			err:        fmt.Errorf("get cart: %w", &upstream.StatusError{StatusCode: 403}),
			wantStatus: http.StatusForbidden,
			wantCode:   AuthzForbidden,
		},
		{
			name:       "not found uses action",
			err:        &upstream.StatusError{StatusCode: 404},
			action:     "remove cart item",
			wantStatus: http.StatusNotFound,
			wantCode:   ResourceNotFound,
			wantMsg:    "Cart item not found",
		},
		{
			name:       "unprocessable becomes validation",
			err:        &upstream.StatusError{StatusCode: 422, Message: "Quantity exceeds stock"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ValidationInvalidInput,
			wantMsg:    "Quantity exceeds stock",
		},
		{
			name:       "server error becomes bad gateway",
			err:        &upstream.StatusError{StatusCode: 500, Message: "NullReferenceException"},
			wantStatus: http.StatusBadGateway,
			wantCode:   UpstreamBadStatus,
		},
		{
			name:       "network failure",
			err:        fmt.Errorf("%w: dial tcp", upstream.ErrUnavailable),
			wantStatus: http.StatusBadGateway,
			wantCode:   UpstreamUnavailable,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusBadGateway,
			wantCode:   UpstreamUnavailable,
		},
		{
			name:       "malformed body",
			err:        upstream.ErrMalformedBody,
			wantStatus: http.StatusBadGateway,
			wantCode:   UpstreamMalformed,
		},
		{
			name:       "anything else",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.action)
			assert.Equal(t, tt.wantStatus, info.Status)
			assert.Equal(t, tt.wantCode, info.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, info.Message)
			}
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_HidesUpstreamInternals(t *testing.T) {
	info := ParseError(&upstream.StatusError{StatusCode: 500, Message: "NullReferenceException at Foo"}, "update cart item")
	assert.NotContains(t, info.Message, "NullReference")
}

func TestRespondWithUpstreamError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithUpstreamError(c, &upstream.StatusError{StatusCode: 404}, "get product")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"RESOURCE_NOT_FOUND","message":"Product not found"}`, w.Body.String())
}
