package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
	}
}

type AddFavoriteRequest struct {
	ProductID int64 `json:"productId"`
}

// GetFavorites lists the customer's favorites
// GET /api/v1/favorites
func (ctrl *FavoriteController) GetFavorites(c *gin.Context) {
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	favorites, err := ctrl.favoriteService.ListFavorites(c.Request.Context(), middleware.GetToken(c), customerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch favorites", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// AddFavorite marks a product as favorite
// POST /api/v1/favorites
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request body")
		return
	}

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	favorites, err := ctrl.favoriteService.AddFavorite(c.Request.Context(), middleware.GetToken(c), customerID, req.ProductID)
	if err != nil {
		respondError(c, err, "add favorite")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// RemoveFavorite deletes a favorite
// DELETE /api/v1/favorites/:id
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	favoriteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	favorites, err := ctrl.favoriteService.RemoveFavorite(c.Request.Context(), middleware.GetToken(c), customerID, favoriteID)
	if err != nil {
		respondError(c, err, "remove favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}
