package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrOrderNotOwned          = errors.New("order belongs to another customer")
)

const (
	exportSheet    = "Orders"
	exportPageSize = 100
)

type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
	Note            string
}

type OrderService interface {
	ListOrders(ctx context.Context, token string, customerID int64, page, pageSize int) (*model.Page[model.Order], error)
	GetOrder(ctx context.Context, token string, customerID, orderID int64) (*model.Order, error)
	Checkout(ctx context.Context, token string, customerID int64, in CheckoutInput) (*model.Order, error)
	// ExportOrders renders every order of the customer as an xlsx workbook.
	ExportOrders(ctx context.Context, token string, customerID int64) ([]byte, error)
}

type orderService struct {
	api *upstream.Client
}

func NewOrderService(api *upstream.Client) OrderService {
	return &orderService{api: api}
}

func (s *orderService) ListOrders(ctx context.Context, token string, customerID int64, page, pageSize int) (*model.Page[model.Order], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var raw interface{}
	path := fmt.Sprintf("/orders/customer/%d", customerID)
	if err := s.api.GetJSON(ctx, path, token, query, &raw); err != nil {
		logger.Error("Failed to fetch customer orders", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	orders, total := mapper.OrdersFromRaw(raw)
	return &model.Page[model.Order]{
		Items:      orders,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, token string, customerID, orderID int64) (*model.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidID
	}

	var raw interface{}
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/orders/%d", orderID), token, nil, &raw); err != nil {
		return nil, err
	}
	fields, ok := mapper.AsFields(raw)
	if !ok {
		return nil, fmt.Errorf("%w: order %d is not an object", upstream.ErrMalformedBody, orderID)
	}

	order := mapper.OrderFromRaw(fields)
	if order.CustomerID != nil && *order.CustomerID != customerID {
		logger.Warn("Order requested by another customer", map[string]interface{}{
			"order_id":    orderID,
			"customer_id": customerID,
		})
		return nil, ErrOrderNotOwned
	}
	if order.ID == 0 {
		order.ID = orderID
	}
	return &order, nil
}

func (s *orderService) Checkout(ctx context.Context, token string, customerID int64, in CheckoutInput) (*model.Order, error) {
	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		return nil, ErrMissingShippingAddress
	}

	logger.Info("Placing order", map[string]interface{}{
		"customer_id":    customerID,
		"payment_method": in.PaymentMethod,
	})

	var raw interface{}
	body := mapper.CheckoutRequest{
		CustomerID:      customerID,
		ShippingAddress: address,
		PaymentMethod:   in.PaymentMethod,
		Note:            in.Note,
	}
	if err := s.api.SendJSON(ctx, http.MethodPost, "/orders", token, body, &raw); err != nil {
		logger.Error("Failed to place order", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	fields, ok := mapper.AsFields(raw)
	if !ok {
		return nil, fmt.Errorf("%w: checkout answer is not an object", upstream.ErrMalformedBody)
	}
	order := mapper.OrderFromRaw(fields)

	logger.Info("Order placed successfully", map[string]interface{}{
		"customer_id": customerID,
		"order_id":    order.ID,
	})
	return &order, nil
}

func (s *orderService) ExportOrders(ctx context.Context, token string, customerID int64) ([]byte, error) {
	var orders []model.Order
	for page := 1; ; page++ {
		result, err := s.ListOrders(ctx, token, customerID, page, exportPageSize)
		if err != nil {
			return nil, err
		}
		orders = append(orders, result.Items...)
		if len(result.Items) < exportPageSize || int64(len(orders)) >= result.TotalCount {
			break
		}
	}

	buf, err := renderOrdersWorkbook(orders)
	if err != nil {
		logger.Error("Failed to render order export", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"customer_id": customerID,
		"orders":      len(orders),
	})
	return buf, nil
}

var exportHeader = []interface{}{
	"Order ID", "Created", "Status", "Payment", "Product", "Quantity", "Unit Price", "Order Total", "Shipping Address",
}

// renderOrdersWorkbook writes one row per order item; orders without items
// still get a row of their own.
func renderOrdersWorkbook(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	row := 2
	for _, o := range orders {
		items := o.OrderItems
		if len(items) == 0 {
			items = []model.OrderItem{{}}
		}
		for _, item := range items {
			values := []interface{}{
				o.ID,
				formatTime(o),
				o.Status,
				o.PaymentStatus,
				item.ProductName,
				item.Quantity,
				optionalFloat(item.UnitPrice),
				optionalFloat(o.TotalAmount),
				o.ShippingAddress,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(o model.Order) string {
	if o.CreatedAt == nil {
		return ""
	}
	return o.CreatedAt.Format("2006-01-02 15:04")
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
