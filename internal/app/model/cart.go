package model

import (
	"encoding/json"
	"time"
)

// AttributeValue is a selected product attribute on a cart line, passed through as received.
type AttributeValue struct {
	AttributeID *int64 `json:"attributeId,omitempty"`
	Value       string `json:"value"`

	// Raw is set for an entry that was not an object; it is written back verbatim.
	Raw json.RawMessage `json:"-"`
}

func (a AttributeValue) MarshalJSON() ([]byte, error) {
	if a.Raw != nil {
		return a.Raw, nil
	}
	type plain AttributeValue
	return json.Marshal(plain(a))
}

// CartItem is the canonical cart line. Every field is optional so that an
// item the storefront API sent incomplete is relayed without invented values.
type CartItem struct {
	ID              *int64           `json:"id,omitempty"`
	ProductID       *int64           `json:"productId,omitempty"`
	Quantity        *int64           `json:"quantity,omitempty"`
	Price           *float64         `json:"price,omitempty"`
	ProductName     *string          `json:"productName,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	CategoryID      *int64           `json:"categoryId,omitempty"`
	CategoryName    *string          `json:"categoryName,omitempty"`
	AttributeValues []AttributeValue `json:"attributeValues,omitempty"`

	// Raw is set for an item that was not an object; it is written back verbatim.
	Raw json.RawMessage `json:"-"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	if i.Raw != nil {
		return i.Raw, nil
	}
	type plain CartItem
	return json.Marshal(plain(i))
}

// Complete reports whether the display fields the storefront needs are all present.
// An empty product name does not count.
func (i CartItem) Complete() bool {
	return i.ProductName != nil && *i.ProductName != "" &&
		i.Price != nil &&
		i.ImageURL != nil &&
		i.CategoryID != nil
}

// LineTotal is price*quantity, or false when either is unknown.
func (i CartItem) LineTotal() (float64, bool) {
	if i.Price == nil || i.Quantity == nil {
		return 0, false
	}
	return *i.Price * float64(*i.Quantity), true
}

type Cart struct {
	ID         *int64     `json:"id,omitempty"`
	CustomerID *int64     `json:"customerId,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	CartItems  []CartItem `json:"cartItems"`
}

// CartView is the response body for cart endpoints.
type CartView struct {
	Cart
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

func NewCartView(cart *Cart) CartView {
	view := CartView{Cart: *cart, Count: len(cart.CartItems)}
	if view.CartItems == nil {
		view.CartItems = []CartItem{}
	}
	for _, item := range cart.CartItems {
		if total, ok := item.LineTotal(); ok {
			view.Total += total
		}
	}
	return view
}
