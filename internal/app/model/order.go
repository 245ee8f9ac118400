package model

import "time"

type Order struct {
	ID              int64       `json:"id"`
	CustomerID      *int64      `json:"customerId,omitempty"`
	Status          string      `json:"status,omitempty"`
	PaymentStatus   string      `json:"paymentStatus,omitempty"`
	TotalAmount     *float64    `json:"totalAmount,omitempty"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	CreatedAt       *time.Time  `json:"createdAt,omitempty"`
	OrderItems      []OrderItem `json:"orderItems"`
}

type OrderItem struct {
	ID          *int64   `json:"id,omitempty"`
	ProductID   *int64   `json:"productId,omitempty"`
	ProductName string   `json:"productName,omitempty"`
	Quantity    int64    `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
}
