package service

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrCustomerUnknown  = errors.New("signed-in user has no customer id")
	ErrForbidden        = errors.New("insufficient role")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidProductID = errors.New("product id must be greater than zero")
	ErrInvalidID        = errors.New("id must be greater than zero")
)
