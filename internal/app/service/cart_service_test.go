package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the requests a fake storefront API received.
type recorder struct {
	mu    sync.Mutex
	calls []string
	body  map[string]interface{}
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &r.body)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func setupCartServiceTest(t *testing.T, cartBody string) (CartService, *recorder) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carts/customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, cartBody)
	})
	mux.HandleFunc("POST /api/carts/customer/{id}/items", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, `{}`)
	})
	mux.HandleFunc("PUT /api/carts/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/carts/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.PathValue("id") == "404" {
			writeJSON(w, http.StatusNotFound, `{"message":"Cart item not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/carts/customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, `{"name":"Lamp","price":10,"imageUrl":"https://img.example.com/l.jpg","categoryId":1}`)
	})

	api := newTestAPI(t, mux)
	enricher := NewCartEnricher(NewProductService(api, nil), nil)
	return NewCartService(api, enricher), rec
}

func TestCartService_GetCart(t *testing.T) {
	svc, rec := setupCartServiceTest(t, `{"Id":1,"CustomerId":42,"CartItems":[{"ProductId":5,"Quantity":2}]}`)

	cart, err := svc.GetCart(context.Background(), "tok", 42)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, "Lamp", *cart.CartItems[0].ProductName)
	assert.Equal(t, []string{"GET /api/carts/customer/42", "GET /api/products/5"}, rec.calls)

	view := model.NewCartView(cart)
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, float64(20), view.Total)
}

func TestCartService_GetCart_UpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carts/customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"expired"}`)
	})
	api := newTestAPI(t, mux)
	svc := NewCartService(api, NewCartEnricher(NewProductService(api, nil), nil))

	_, err := svc.GetCart(context.Background(), "tok", 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode(err))
}

func TestCartService_GetCart_Malformed(t *testing.T) {
	svc, _ := setupCartServiceTest(t, `[1,2,3]`)

	_, err := svc.GetCart(context.Background(), "tok", 1)
	assert.ErrorIs(t, err, ErrMalformedCart)
}

func TestCartService_AddItem(t *testing.T) {
	svc, rec := setupCartServiceTest(t, `{"cartItems":[]}`)

	attr := int64(4)
	_, err := svc.AddItem(context.Background(), "tok", 42, AddCartItemInput{
		ProductID:       5,
		Quantity:        2,
		AttributeValues: []model.AttributeValue{{AttributeID: &attr, Value: "Red"}, {Value: "dropped"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/carts/customer/42/items", "GET /api/carts/customer/42"}, rec.calls)
	assert.Equal(t, float64(5), rec.body["ProductId"])
	assert.Equal(t, float64(2), rec.body["Quantity"])
	attrs, ok := rec.body["AttributeValues"].([]interface{})
	require.True(t, ok)
	assert.Len(t, attrs, 1)
}

func TestCartService_Validation(t *testing.T) {
	svc, rec := setupCartServiceTest(t, `{"cartItems":[]}`)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"add zero quantity", func() error {
			_, err := svc.AddItem(ctx, "tok", 1, AddCartItemInput{ProductID: 5, Quantity: 0})
			return err
		}, ErrInvalidQuantity},
		{"add bad product", func() error {
			_, err := svc.AddItem(ctx, "tok", 1, AddCartItemInput{ProductID: 0, Quantity: 1})
			return err
		}, ErrInvalidProductID},
		{"update negative quantity", func() error {
			_, err := svc.UpdateItem(ctx, "tok", 1, 3, -1)
			return err
		}, ErrInvalidQuantity},
		{"remove bad id", func() error {
			_, err := svc.RemoveItem(ctx, "tok", 1, 0)
			return err
		}, ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
	assert.Empty(t, rec.calls)
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	svc, rec := setupCartServiceTest(t, `{"cartItems":[]}`)
	ctx := context.Background()

	_, err := svc.UpdateItem(ctx, "tok", 42, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, float64(5), rec.body["Quantity"])

	_, err = svc.RemoveItem(ctx, "tok", 42, 3)
	require.NoError(t, err)

	_, err = svc.ClearCart(ctx, "tok", 42)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"PUT /api/carts/items/3", "GET /api/carts/customer/42",
		"DELETE /api/carts/items/3", "GET /api/carts/customer/42",
		"DELETE /api/carts/customer/42", "GET /api/carts/customer/42",
	}, rec.calls)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	svc, _ := setupCartServiceTest(t, `{"cartItems":[]}`)

	_, err := svc.RemoveItem(context.Background(), "tok", 42, 404)
	require.Error(t, err)
	status, ok := upstream.AsStatus(err)
	require.True(t, ok)
	assert.Equal(t, "Cart item not found", status.Message)
}
