package mapper

import (
	"encoding/json"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
)

// Key variants for a cart line, in precedence order.
var (
	cartItemIDKeys      = Keys("id", "cartItemId")
	cartProductIDKeys   = Keys("productId", "productID")
	cartQuantityKeys    = Keys("quantity", "qty")
	cartPriceKeys       = Keys("price", "unitPrice")
	cartNameKeys        = Keys("productName", "name")
	cartImageKeys       = Keys("imageUrl", "imageURL", "productImage", "productImageUrl")
	cartCategoryIDKeys  = Keys("categoryId", "categoryID")
	cartCategoryKeys    = Keys("categoryName")
	cartAttributeKeys   = Keys("attributeValues")
	cartNestedProduct   = Keys("product")
	cartItemsKeys       = Keys("cartItems", "items")
	cartIDKeys          = Keys("id", "cartId")
	cartCustomerIDKeys  = Keys("customerId", "customerID")
	cartCreatedAtKeys   = Keys("createdAt", "createdDate")
	attributeIDKeys     = Keys("attributeId", "attributeID")
	attributeValueKeys  = Keys("value")
	envelopeContentKeys = Keys("data", "result")
)

// CartFromRaw maps a cart object into the canonical shape. Items keep their
// upstream order; a missing items array yields an empty cart.
func CartFromRaw(raw Fields) *model.Cart {
	if _, ok := raw.Array(cartItemsKeys...); !ok {
		if inner, ok := raw.Object(envelopeContentKeys...); ok {
			raw = inner
		}
	}

	cart := &model.Cart{
		ID:         raw.IntPtr(cartIDKeys...),
		CustomerID: raw.IntPtr(cartCustomerIDKeys...),
		CreatedAt:  raw.TimePtr(cartCreatedAtKeys...),
		CartItems:  []model.CartItem{},
	}

	rawItems, _ := raw.Array(cartItemsKeys...)
	for _, el := range rawItems {
		f, ok := AsFields(el)
		if !ok {
			cart.CartItems = append(cart.CartItems, model.CartItem{Raw: rawJSON(el)})
			continue
		}
		cart.CartItems = append(cart.CartItems, CartItemFromRaw(f))
	}
	return cart
}

// CartItemFromRaw resolves each field from the item itself first, then from a
// nested product object when the API embeds one.
func CartItemFromRaw(raw Fields) model.CartItem {
	item := model.CartItem{
		ID:           raw.IntPtr(cartItemIDKeys...),
		ProductID:    raw.IntPtr(cartProductIDKeys...),
		Quantity:     raw.IntPtr(cartQuantityKeys...),
		Price:        raw.FloatPtr(cartPriceKeys...),
		ProductName:  raw.TextPtr(cartNameKeys...),
		ImageURL:     raw.StringPtr(cartImageKeys...),
		CategoryID:   raw.IntPtr(cartCategoryIDKeys...),
		CategoryName: raw.StringPtr(cartCategoryKeys...),
	}

	if product, ok := raw.Object(cartNestedProduct...); ok {
		if item.ProductID == nil {
			item.ProductID = product.IntPtr(Keys("id")...)
		}
		if item.Price == nil {
			item.Price = product.FloatPtr(Keys("price")...)
		}
		if item.ProductName == nil || *item.ProductName == "" {
			if name, ok := product.Text(Keys("name", "productName")...); ok && name != "" {
				item.ProductName = &name
			}
		}
		if item.ImageURL == nil {
			item.ImageURL = product.StringPtr(Keys("imageUrl", "imageURL")...)
		}
		if item.CategoryID == nil {
			item.CategoryID = product.IntPtr(cartCategoryIDKeys...)
		}
		if item.CategoryName == nil {
			item.CategoryName = product.StringPtr(cartCategoryKeys...)
		}
	}

	if attrs, ok := raw.Array(cartAttributeKeys...); ok {
		item.AttributeValues = make([]model.AttributeValue, 0, len(attrs))
		for _, el := range attrs {
			a, ok := AsFields(el)
			if !ok {
				item.AttributeValues = append(item.AttributeValues, model.AttributeValue{Raw: rawJSON(el)})
				continue
			}
			value, _ := a.String(attributeValueKeys...)
			item.AttributeValues = append(item.AttributeValues, model.AttributeValue{
				AttributeID: a.IntPtr(attributeIDKeys...),
				Value:       value,
			})
		}
	}

	return item
}

// rawJSON re-encodes a decoded value. Numbers stay json.Number, so their
// text is unchanged.
func rawJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

// CartItemRequest is the body the storefront API expects when adding a line.
type CartItemRequest struct {
	ProductID       int64                 `json:"ProductId"`
	Quantity        int64                 `json:"Quantity"`
	AttributeValues []AttributeValueInput `json:"AttributeValues,omitempty"`
}

type AttributeValueInput struct {
	AttributeID int64  `json:"AttributeId"`
	Value       string `json:"Value"`
}

// QuantityRequest is the body for a quantity change.
type QuantityRequest struct {
	Quantity int64 `json:"Quantity"`
}
