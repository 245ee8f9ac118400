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

type AddCartItemInput struct {
	ProductID       int64
	Quantity        int64
	AttributeValues []model.AttributeValue
}

// CartService relays cart operations to the storefront API. Every call
// answers with the freshly fetched, enriched cart.
type CartService interface {
	GetCart(ctx context.Context, token string, customerID int64) (*model.Cart, error)
	AddItem(ctx context.Context, token string, customerID int64, in AddCartItemInput) (*model.Cart, error)
	UpdateItem(ctx context.Context, token string, customerID, itemID, quantity int64) (*model.Cart, error)
	RemoveItem(ctx context.Context, token string, customerID, itemID int64) (*model.Cart, error)
	ClearCart(ctx context.Context, token string, customerID int64) (*model.Cart, error)
}

type cartService struct {
	api      *upstream.Client
	enricher *CartEnricher
}

func NewCartService(api *upstream.Client, enricher *CartEnricher) CartService {
	return &cartService{
		api:      api,
		enricher: enricher,
	}
}

func cartPath(customerID int64) string {
	return fmt.Sprintf("/carts/customer/%d", customerID)
}

func cartItemPath(itemID int64) string {
	return fmt.Sprintf("/carts/items/%d", itemID)
}

func (s *cartService) GetCart(ctx context.Context, token string, customerID int64) (*model.Cart, error) {
	logger.Debug("Fetching customer cart", map[string]interface{}{
		"customer_id": customerID,
	})

	resp, err := s.api.Do(ctx, upstream.Request{
		Method: http.MethodGet,
		Path:   cartPath(customerID),
		Token:  token,
	})
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	cart, err := s.enricher.NormalizeAndEnrich(ctx, resp.Body, token)
	if err != nil {
		logger.Error("Upstream cart could not be decoded", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	logger.Debug("Cart fetched successfully", map[string]interface{}{
		"customer_id": customerID,
		"count":       len(cart.CartItems),
	})
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, token string, customerID int64, in AddCartItemInput) (*model.Cart, error) {
	if in.ProductID <= 0 {
		return nil, ErrInvalidProductID
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	body := mapper.CartItemRequest{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}
	for _, av := range in.AttributeValues {
		if av.AttributeID == nil {
			continue
		}
		body.AttributeValues = append(body.AttributeValues, mapper.AttributeValueInput{
			AttributeID: *av.AttributeID,
			Value:       av.Value,
		})
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"customer_id": customerID,
		"product_id":  in.ProductID,
		"quantity":    in.Quantity,
	})

	if err := s.api.SendJSON(ctx, http.MethodPost, cartPath(customerID)+"/items", token, body, nil); err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"customer_id": customerID,
			"product_id":  in.ProductID,
		})
		return nil, err
	}
	return s.GetCart(ctx, token, customerID)
}

func (s *cartService) UpdateItem(ctx context.Context, token string, customerID, itemID, quantity int64) (*model.Cart, error) {
	if itemID <= 0 {
		return nil, ErrInvalidID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Updating cart item", map[string]interface{}{
		"customer_id":  customerID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if err := s.api.SendJSON(ctx, http.MethodPut, cartItemPath(itemID), token, mapper.QuantityRequest{Quantity: quantity}, nil); err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return s.GetCart(ctx, token, customerID)
}

func (s *cartService) RemoveItem(ctx context.Context, token string, customerID, itemID int64) (*model.Cart, error) {
	if itemID <= 0 {
		return nil, ErrInvalidID
	}

	logger.Info("Removing cart item", map[string]interface{}{
		"customer_id":  customerID,
		"cart_item_id": itemID,
	})

	if err := s.api.SendJSON(ctx, http.MethodDelete, cartItemPath(itemID), token, nil, nil); err != nil {
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return s.GetCart(ctx, token, customerID)
}

func (s *cartService) ClearCart(ctx context.Context, token string, customerID int64) (*model.Cart, error) {
	logger.Info("Clearing customer cart", map[string]interface{}{
		"customer_id": customerID,
	})

	if err := s.api.SendJSON(ctx, http.MethodDelete, cartPath(customerID), token, nil, nil); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	return s.GetCart(ctx, token, customerID)
}
