package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID       int64                  `json:"productId" binding:"required,gt=0"`
	Quantity        int64                  `json:"quantity" binding:"required,gt=0"`
	AttributeValues []model.AttributeValue `json:"attributeValues"`
}

type UpdateCartRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// GetCart returns the customer's enriched cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetToken(c), customerID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "get cart")
		return
	}

	view := model.NewCartView(cart)
	log.Info("Cart fetched successfully", map[string]interface{}{
		"customer_id": customerID,
		"count":       view.Count,
		"total":       view.Total,
	})
	c.JSON(http.StatusOK, view)
}

// AddToCart adds a product to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.RespondWithValidationError(c, bindingFields(err))
		return
	}

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), middleware.GetToken(c), customerID, service.AddCartItemInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		AttributeValues: req.AttributeValues,
	})
	if err != nil {
		log.Warn("Failed to add to cart", map[string]interface{}{
			"customer_id": customerID,
			"product_id":  req.ProductID,
			"error":       err.Error(),
		})
		respondError(c, err, "add cart item")
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(cart))
}

// UpdateCartItem changes the quantity of a cart line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart item update", map[string]interface{}{
			"cart_item_id": itemID,
			"error":        err.Error(),
		})
		errors.RespondWithValidationError(c, bindingFields(err))
		return
	}

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.UpdateItem(c.Request.Context(), middleware.GetToken(c), customerID, itemID, req.Quantity)
	if err != nil {
		log.Warn("Failed to update cart item", map[string]interface{}{
			"cart_item_id": itemID,
			"error":        err.Error(),
		})
		respondError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(cart))
}

// RemoveFromCart removes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetToken(c), customerID, itemID)
	if err != nil {
		log.Warn("Failed to remove cart item", map[string]interface{}{
			"cart_item_id": itemID,
			"error":        err.Error(),
		})
		respondError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(cart))
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.ClearCart(c.Request.Context(), middleware.GetToken(c), customerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to clear cart", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "delete cart")
		return
	}

	c.JSON(http.StatusOK, model.NewCartView(cart))
}
