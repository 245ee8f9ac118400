package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// GetProducts lists catalog products
// GET /api/v1/products?page=&pageSize=&categoryId=&search=&sortBy=
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	query := service.ProductListQuery{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 0),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid category id")
			return
		}
		query.CategoryID = &id
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), middleware.GetToken(c), query)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products", err)
		respondError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProductByID returns one product with its resolved display image
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(c.Request.Context(), middleware.GetToken(c), id)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to fetch product", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		respondError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetCategories lists catalog categories
// GET /api/v1/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories(c.Request.Context(), middleware.GetToken(c))
	if err != nil {
		respondError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}
