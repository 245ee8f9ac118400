package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFavoriteServiceTest(t *testing.T) (FavoriteService, *recorder) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/favorites/customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, `[
			{"Id":1,"ProductId":5,"ProductName":"Lamp","Price":3,"ImageUrl":"l.jpg"},
			{"Id":2,"ProductId":6},
			{"Id":3,"ProductId":7}
		]`)
	})
	mux.HandleFunc("POST /api/favorites", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusNoContent)
	})

	api := newTestAPI(t, mux)
	return NewFavoriteService(api, stubCatalog{fail: map[int64]bool{7: true}}), rec
}

func TestFavoriteService_ListFavorites(t *testing.T) {
	svc, rec := setupFavoriteServiceTest(t)

	favorites, err := svc.ListFavorites(context.Background(), "tok", 42)
	require.NoError(t, err)
	require.Len(t, favorites, 3)

	assert.Equal(t, "Lamp", *favorites[0].ProductName)
	assert.Equal(t, "l.jpg", *favorites[0].ImageURL)

	assert.Equal(t, "P6", *favorites[1].ProductName)
	assert.Equal(t, float64(6), *favorites[1].Price)

	assert.Nil(t, favorites[2].ProductName, "failed lookup keeps the favorite")
	assert.Equal(t, []string{"GET /api/favorites/customer/42"}, rec.calls)
}

func TestFavoriteService_AddAndRemove(t *testing.T) {
	svc, rec := setupFavoriteServiceTest(t)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, "tok", 42, 0)
	assert.ErrorIs(t, err, ErrInvalidProductID)

	_, err = svc.AddFavorite(ctx, "tok", 42, 5)
	require.NoError(t, err)
	assert.Equal(t, float64(5), rec.body["ProductId"])
	assert.Equal(t, float64(42), rec.body["CustomerId"])

	_, err = svc.RemoveFavorite(ctx, "tok", 42, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/favorites", "GET /api/favorites/customer/42",
		"DELETE /api/favorites/1", "GET /api/favorites/customer/42",
	}, rec.calls)
}

func TestMergeFavorite_BackendValuesWin(t *testing.T) {
	price := 3.0
	empty := ""
	fav := mergeFavorite(model.Favorite{ProductID: 9, ProductName: &empty, Price: &price}, &model.Product{
		Name:     "Catalog",
		Price:    floatPtr(99),
		ImageURL: stringPtr("https://cdn.example.com/9.jpg"),
	})

	assert.Equal(t, "Catalog", *fav.ProductName, "empty name is filled")
	assert.Equal(t, 3.0, *fav.Price)
	assert.Equal(t, "https://cdn.example.com/9.jpg", *fav.ImageURL)
}
