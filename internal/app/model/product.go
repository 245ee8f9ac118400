package model

// MediaFile is an entry of a product's media gallery.
type MediaFile struct {
	URL      string `json:"url"`
	MediaTyp string `json:"mediaTyp,omitempty"`
}

type Product struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	ImageURL      *string     `json:"imageUrl,omitempty"`
	MediaFiles    []MediaFile `json:"mediaFiles,omitempty"`
	CategoryID    *int64      `json:"categoryId,omitempty"`
	CategoryName  *string     `json:"categoryName,omitempty"`
	StockQuantity *int64      `json:"stockQuantity,omitempty"`
}

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
}

// Page is a list response with an optional total from the storefront API.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}
