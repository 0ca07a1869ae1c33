package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrBadTransition   = errors.New("invalid checkout transition")
	ErrCardDisabled    = errors.New("card payments are not configured")
)
