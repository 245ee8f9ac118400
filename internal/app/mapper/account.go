package mapper

import (
	"strings"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
)

var (
	userIDKeys       = Keys("id", "userId")
	userCustomerKeys = Keys("customerId", "customerID")
	userEmailKeys    = Keys("email", "emailAddress")
	userNameKeys     = Keys("name", "fullName", "userName")
	userRolesKeys    = Keys("roles")
	userRoleKeys     = Keys("role")

	orderIDKeys       = Keys("id", "orderId")
	orderStatusKeys   = Keys("status", "orderStatus")
	orderPaymentKeys  = Keys("paymentStatus")
	orderTotalKeys    = Keys("totalAmount", "totalPrice", "total")
	orderAddressKeys  = Keys("shippingAddress", "address")
	orderCreatedKeys  = Keys("createdAt", "orderDate", "createdDate")
	orderItemsKeys    = Keys("orderItems", "items")
	orderItemIDKeys   = Keys("id", "orderItemId")
	orderItemQtyKeys  = Keys("quantity")
	orderItemPriceKey = Keys("unitPrice", "price")

	favoriteIDKeys = Keys("id", "favoriteId")

	reportIDKeys       = Keys("id", "reportId")
	reportTypeKeys     = Keys("targetType", "entityType")
	reportTargetKeys   = Keys("targetId", "entityId")
	reportReasonKeys   = Keys("reason", "description")
	reportStatusKeys   = Keys("status")
	reportReporterKeys = Keys("reporterId", "reportedBy")
)

// UserFromRaw maps GET /auth/me. Roles arrive either as an array or a
// single "role" string; the customer id may be nested under "customer".
func UserFromRaw(raw Fields) model.User {
	u := model.User{CustomerID: raw.IntPtr(userCustomerKeys...)}
	u.ID, _ = raw.Int(userIDKeys...)
	u.Email, _ = raw.String(userEmailKeys...)
	u.Name, _ = raw.String(userNameKeys...)

	if u.CustomerID == nil {
		if customer, ok := raw.Object(Keys("customer")...); ok {
			u.CustomerID = customer.IntPtr(Keys("id", "customerId")...)
		}
	}

	if roles, ok := raw.Array(userRolesKeys...); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				u.Roles = append(u.Roles, model.UserRole(strings.ToLower(s)))
			}
		}
	} else if role, ok := raw.String(userRoleKeys...); ok && role != "" {
		u.Roles = []model.UserRole{model.UserRole(strings.ToLower(role))}
	}
	return u
}

func OrderFromRaw(raw Fields) model.Order {
	o := model.Order{
		CustomerID:  raw.IntPtr(cartCustomerIDKeys...),
		TotalAmount: raw.FloatPtr(orderTotalKeys...),
		CreatedAt:   raw.TimePtr(orderCreatedKeys...),
		OrderItems:  []model.OrderItem{},
	}
	o.ID, _ = raw.Int(orderIDKeys...)
	o.Status, _ = raw.String(orderStatusKeys...)
	o.PaymentStatus, _ = raw.String(orderPaymentKeys...)
	o.ShippingAddress, _ = raw.String(orderAddressKeys...)

	items, _ := raw.Array(orderItemsKeys...)
	for _, el := range items {
		f, ok := AsFields(el)
		if !ok {
			continue
		}
		item := model.OrderItem{
			ID:        f.IntPtr(orderItemIDKeys...),
			ProductID: f.IntPtr(cartProductIDKeys...),
			UnitPrice: f.FloatPtr(orderItemPriceKey...),
		}
		item.ProductName, _ = f.String(cartNameKeys...)
		item.Quantity, _ = f.Int(orderItemQtyKeys...)
		o.OrderItems = append(o.OrderItems, item)
	}
	return o
}

func OrdersFromRaw(v interface{}) ([]model.Order, int64) {
	items, total := List(v)
	out := make([]model.Order, 0, len(items))
	for _, f := range items {
		out = append(out, OrderFromRaw(f))
	}
	return out, total
}

func FavoriteFromRaw(raw Fields) model.Favorite {
	fav := model.Favorite{
		CreatedAt:   raw.TimePtr(cartCreatedAtKeys...),
		ProductName: raw.TextPtr(cartNameKeys...),
		Price:       raw.FloatPtr(cartPriceKeys...),
		ImageURL:    raw.StringPtr(cartImageKeys...),
	}
	fav.ID, _ = raw.Int(favoriteIDKeys...)
	fav.ProductID, _ = raw.Int(cartProductIDKeys...)

	if product, ok := raw.Object(cartNestedProduct...); ok {
		p := ProductFromRaw(product)
		if fav.ProductID == 0 {
			fav.ProductID = p.ID
		}
		if (fav.ProductName == nil || *fav.ProductName == "") && p.Name != "" {
			fav.ProductName = &p.Name
		}
		if fav.Price == nil {
			fav.Price = p.Price
		}
		if fav.ImageURL == nil {
			fav.ImageURL = p.ImageURL
		}
	}
	return fav
}

func FavoritesFromRaw(v interface{}) []model.Favorite {
	items, _ := List(v)
	out := make([]model.Favorite, 0, len(items))
	for _, f := range items {
		out = append(out, FavoriteFromRaw(f))
	}
	return out
}

func ReportFromRaw(raw Fields) model.Report {
	r := model.Report{
		ReporterID: raw.IntPtr(reportReporterKeys...),
		CreatedAt:  raw.TimePtr(cartCreatedAtKeys...),
	}
	r.ID, _ = raw.Int(reportIDKeys...)
	r.TargetType, _ = raw.String(reportTypeKeys...)
	r.TargetID, _ = raw.Int(reportTargetKeys...)
	r.Reason, _ = raw.String(reportReasonKeys...)
	r.Status, _ = raw.String(reportStatusKeys...)
	return r
}

func ReportsFromRaw(v interface{}) ([]model.Report, int64) {
	items, total := List(v)
	out := make([]model.Report, 0, len(items))
	for _, f := range items {
		out = append(out, ReportFromRaw(f))
	}
	return out, total
}

var (
	loginTokenKeys = Keys("token", "accessToken", "jwt")
	loginUserKeys  = Keys("user")
)

// LoginFromRaw reads the POST /auth/login answer. The user is nil when the
// API answers with the token alone.
func LoginFromRaw(raw Fields) (string, *model.User) {
	token, _ := raw.String(loginTokenKeys...)
	if token == "" {
		if data, ok := raw.Object(Keys("data", "result")...); ok {
			return LoginFromRaw(data)
		}
		return "", nil
	}
	if obj, ok := raw.Object(loginUserKeys...); ok {
		u := UserFromRaw(obj)
		return token, &u
	}
	return token, nil
}

type LoginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

type CheckoutRequest struct {
	CustomerID      int64  `json:"CustomerId"`
	ShippingAddress string `json:"ShippingAddress"`
	PaymentMethod   string `json:"PaymentMethod,omitempty"`
	Note            string `json:"Note,omitempty"`
}

type FavoriteRequest struct {
	CustomerID int64 `json:"CustomerId"`
	ProductID  int64 `json:"ProductId"`
}

type ResolveReportRequest struct {
	Action string `json:"Action"`
	Note   string `json:"Note,omitempty"`
}
