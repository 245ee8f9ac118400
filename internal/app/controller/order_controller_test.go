package controller

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupOrderControllerTest(t *testing.T) (*testEnv, *storefront) {
	sf := newStorefront()
	sf.handle("GET /api/orders/customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"Items":[
			{"Id":3,"CustomerId":42,"Status":"Paid","TotalAmount":25,"OrderItems":[{"ProductName":"Lamp","Quantity":2,"UnitPrice":12.5}]}
		],"TotalCount":1}`)
	})
	sf.handle("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "3":
			writeJSON(w, http.StatusOK, `{"Id":3,"CustomerId":42,"Status":"Paid","OrderItems":[]}`)
		case "4":
			writeJSON(w, http.StatusOK, `{"Id":4,"CustomerId":77,"Status":"Paid","OrderItems":[]}`)
		default:
			writeJSON(w, http.StatusNotFound, `{}`)
		}
	})
	sf.handle("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"OrderId":100,"Status":"Pending","TotalAmount":25}`)
	})

	env := newTestEnv(t, sf)
	ctrl := NewOrderController(service.NewOrderService(env.api))

	orders := env.router.Group("/orders", env.mw.Authenticate())
	orders.GET("", ctrl.GetOrders)
	orders.GET("/export", ctrl.ExportOrders)
	orders.GET("/:id", ctrl.GetOrderByID)
	orders.POST("", ctrl.Checkout)
	return env, sf
}

func TestOrderController_GetOrders(t *testing.T) {
	env, sf := setupOrderControllerTest(t)

	w := env.do(http.MethodGet, "/orders?page=1&pageSize=5", "tok-1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["totalCount"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Paid", items[0].(map[string]interface{})["status"])
	assert.True(t, sf.called("GET /api/orders/customer/42"))
}

func TestOrderController_GetOrderByID(t *testing.T) {
	env, _ := setupOrderControllerTest(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"own order", "/orders/3", http.StatusOK, ""},
		{"someone else's order", "/orders/4", http.StatusForbidden, errors.AuthzForbidden},
		{"unknown order", "/orders/5", http.StatusNotFound, errors.ResourceNotFound},
		{"bad id", "/orders/abc", http.StatusBadRequest, errors.ValidationInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, tt.path, "tok-1", "")
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeBody(t, w)["error"])
			}
		})
	}
}

func TestOrderController_Checkout(t *testing.T) {
	env, sf := setupOrderControllerTest(t)

	w := env.do(http.MethodPost, "/orders", "tok-1", `{"shippingAddress":"1 Main St","paymentMethod":"card"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(100), decodeBody(t, w)["id"])

	sent := sf.lastBody()
	assert.Equal(t, float64(42), sent["CustomerId"])
	assert.Equal(t, "1 Main St", sent["ShippingAddress"])

	w = env.do(http.MethodPost, "/orders", "tok-1", `{"paymentMethod":"card"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ValidationInvalidInput, decodeBody(t, w)["error"])
}

func TestOrderController_ExportOrders(t *testing.T) {
	env, _ := setupOrderControllerTest(t)

	w := env.do(http.MethodGet, "/orders/export", "tok-1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Lamp")
}

func TestOrderController_RequiresCustomer(t *testing.T) {
	env, _ := setupOrderControllerTest(t)

	w := env.do(http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/orders/export", "tok-admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errors.AuthCustomerUnknown, decodeBody(t, w)["error"])
}
