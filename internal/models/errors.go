package models

import (
	"errors"
	"fmt"
)

// Business-rule errors. Handlers map these to 4xx responses; anything else
// coming out of a store is treated as an infrastructure failure.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrDuplicateBarcode  = errors.New("barcode already in use")
	ErrProductReferenced = errors.New("product is referenced by sale items")
	ErrEmptyCart         = errors.New("cart has no items")
	ErrNotInCart         = errors.New("product is not in the cart")
)

// ValidationError rejects bad input before it touches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError names the offending product so the operator knows
// which line to fix. Raised both at cart-add time and again inside the
// commit transaction, where it also covers the lost-update race.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// IsBusinessError reports whether err is a validation or business-rule
// failure rather than an infrastructure one. Infra errors are the only ones
// worth retrying.
func IsBusinessError(err error) bool {
	var ve *ValidationError
	var ise *InsufficientStockError
	switch {
	case errors.As(err, &ve), errors.As(err, &ise):
		return true
	}
	for _, sentinel := range []error{
		ErrProductNotFound, ErrSaleNotFound, ErrDuplicateBarcode,
		ErrProductReferenced, ErrEmptyCart, ErrNotInCart,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
