package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	PaymentMethod   string `json:"paymentMethod"`
	Note            string `json:"note"`
}

// GetOrders lists the customer's orders
// GET /api/v1/orders?page=&pageSize=
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	page, err := ctrl.orderService.ListOrders(c.Request.Context(), middleware.GetToken(c), customerID, queryInt(c, "page", 1), queryInt(c, "pageSize", 0))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch orders", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetOrderByID returns one of the customer's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), middleware.GetToken(c), customerID, orderID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to fetch order", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
		respondError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// Checkout places an order from the current cart
// POST /api/v1/orders
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.RespondWithValidationError(c, map[string]string{
			"shippingAddress": "required",
		})
		return
	}

	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), middleware.GetToken(c), customerID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
	})
	if err != nil {
		log.Error("Checkout failed", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "create order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ExportOrders downloads every order of the customer as a spreadsheet
// GET /api/v1/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	customerID, ok := resolveCustomer(c)
	if !ok {
		return
	}

	data, err := ctrl.orderService.ExportOrders(c.Request.Context(), middleware.GetToken(c), customerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Order export failed", err, map[string]interface{}{
			"customer_id": customerID,
		})
		respondError(c, err, "export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
