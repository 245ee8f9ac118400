package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

type FavoriteService interface {
	ListFavorites(ctx context.Context, token string, customerID int64) ([]model.Favorite, error)
	AddFavorite(ctx context.Context, token string, customerID, productID int64) ([]model.Favorite, error)
	RemoveFavorite(ctx context.Context, token string, customerID, favoriteID int64) ([]model.Favorite, error)
}

type favoriteService struct {
	api     *upstream.Client
	catalog CatalogReader
}

func NewFavoriteService(api *upstream.Client, catalog CatalogReader) FavoriteService {
	return &favoriteService{
		api:     api,
		catalog: catalog,
	}
}

func (s *favoriteService) ListFavorites(ctx context.Context, token string, customerID int64) ([]model.Favorite, error) {
	var raw interface{}
	path := fmt.Sprintf("/favorites/customer/%d", customerID)
	if err := s.api.GetJSON(ctx, path, token, nil, &raw); err != nil {
		logger.Error("Failed to fetch favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	favorites := mapper.FavoritesFromRaw(raw)
	s.fillDisplayFields(ctx, token, favorites)
	return favorites, nil
}

func (s *favoriteService) AddFavorite(ctx context.Context, token string, customerID, productID int64) ([]model.Favorite, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}

	logger.Info("Adding favorite", map[string]interface{}{
		"customer_id": customerID,
		"product_id":  productID,
	})

	body := mapper.FavoriteRequest{CustomerID: customerID, ProductID: productID}
	if err := s.api.SendJSON(ctx, http.MethodPost, "/favorites", token, body, nil); err != nil {
		logger.Error("Failed to add favorite", err, map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		})
		return nil, err
	}
	return s.ListFavorites(ctx, token, customerID)
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, token string, customerID, favoriteID int64) ([]model.Favorite, error) {
	if favoriteID <= 0 {
		return nil, ErrInvalidID
	}

	logger.Info("Removing favorite", map[string]interface{}{
		"customer_id": customerID,
		"favorite_id": favoriteID,
	})

	if err := s.api.SendJSON(ctx, http.MethodDelete, fmt.Sprintf("/favorites/%d", favoriteID), token, nil, nil); err != nil {
		logger.Error("Failed to remove favorite", err, map[string]interface{}{
			"favorite_id": favoriteID,
		})
		return nil, err
	}
	return s.ListFavorites(ctx, token, customerID)
}

// fillDisplayFields looks up every favorite missing a display field, in
// place. Lookup failures leave the favorite as the API sent it.
func (s *favoriteService) fillDisplayFields(ctx context.Context, token string, favorites []model.Favorite) {
	wanted := make([]*int64, len(favorites))
	for i, fav := range favorites {
		if fav.ProductID <= 0 {
			continue
		}
		if fav.ProductName != nil && *fav.ProductName != "" && fav.Price != nil && fav.ImageURL != nil {
			continue
		}
		wanted[i] = &favorites[i].ProductID
	}

	for i, product := range lookupProducts(ctx, s.catalog, token, wanted, nil) {
		if product != nil {
			favorites[i] = mergeFavorite(favorites[i], product)
		}
	}
}

// mergeFavorite applies the cart merge rules to a favorite's display fields.
func mergeFavorite(fav model.Favorite, p *model.Product) model.Favorite {
	merged := mergeProduct(model.CartItem{
		ProductName: fav.ProductName,
		Price:       fav.Price,
		ImageURL:    fav.ImageURL,
	}, p)
	fav.ProductName = merged.ProductName
	fav.Price = merged.Price
	fav.ImageURL = merged.ImageURL
	return fav
}
