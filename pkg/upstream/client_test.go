package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client, srv
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{BaseURL: "/relative"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_GetJSON_ForwardsTokenAndQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/5", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Lamp","price":19.99}`))
	})

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "/products/5", "tok-123", url.Values{"page": {"2"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Lamp", out["name"])
	assert.Equal(t, json.Number("19.99"), out["price"])
}

func TestClient_StatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"Message":"Product not found"}`))
	})

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "/products/9", "", nil, &out)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	se, ok := AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, "Product not found", se.Message)
	assert.Contains(t, se.Error(), "status 404")
}

func TestClient_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":`))
	})

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "/products/1", "", nil, &out)
	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	var observed int = -1
	client, err := New(Config{
		BaseURL: baseURL,
		Observer: func(method string, status int, elapsed time.Duration) {
			observed = status
		},
	})
	require.NoError(t, err)

	err = client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, observed)
}

func TestClient_SendJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"ProductId":5,"Quantity":2}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	in := map[string]interface{}{"ProductId": 5, "Quantity": 2}
	var out map[string]interface{}
	err := client.SendJSON(context.Background(), http.MethodPost, "/carts/customer/1/items", "tok", in, &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}
