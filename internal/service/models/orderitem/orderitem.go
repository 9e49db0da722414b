package orderitem

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MinPrice is the smallest accepted unit price.
var MinPrice = decimal.NewFromFloat(0.01)

var (
	ErrMissingProductID = errors.New("productId is required")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidPrice     = errors.New("price must be at least 0.01")
)

// OrderItem is a line within an order. Items carry no identity of their own;
// their position in the parent order is the display order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Validate checks the creation-time invariants of a single item.
func (i OrderItem) Validate() error {
	if i.ProductID == "" {
		return ErrMissingProductID
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i.Price.LessThan(MinPrice) {
		return ErrInvalidPrice
	}

	return nil
}

// ComputeSubtotal returns price multiplied by quantity.
func (i OrderItem) ComputeSubtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
