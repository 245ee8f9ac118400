package model

import "time"

type Favorite struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"productId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`

	// Display fields, filled from the catalog when the API omits them
	ProductName *string  `json:"productName,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}
