package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no order matches the requested id.
var ErrNotFound = errors.New("order not found")

func init() {
	// Amounts travel as plain JSON numbers, matching the wire contract.
	decimal.MarshalJSONWithoutQuotes = true
}

// Order represents a purchase record in the system.
type Order struct {
	ID              int64                 `json:"id"`
	AccountID       string                `json:"accountId"`
	Items           []orderitem.OrderItem `json:"items"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	ShippingAddress string                `json:"shippingAddress"`
	PaymentID       string                `json:"paymentId,omitempty"`
	Status          Status                `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// CreateOrderRequest is the payload for creating an order. The server assigns
// the id, timestamps, total and initial status.
type CreateOrderRequest struct {
	AccountID       string                `json:"accountId"`
	Items           []orderitem.OrderItem `json:"items"`
	ShippingAddress string                `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
}

// FieldError ties a validation failure to the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field-level failures so callers can render them
// inline.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}

	return strings.Join(parts, "; ")
}

// Validate checks the creation-time invariants. Orders fetched back from the
// server are not re-validated.
func (r *CreateOrderRequest) Validate() error {
	var errs ValidationErrors

	if r.AccountID == "" {
		errs = append(errs, FieldError{Field: "accountId", Message: "is required"})
	}
	if r.ShippingAddress == "" {
		errs = append(errs, FieldError{Field: "shippingAddress", Message: "is required"})
	}
	if len(r.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range r.Items {
		if err := item.Validate(); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: err.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ComputeTotal sums price multiplied by quantity over the request items.
func (r *CreateOrderRequest) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.ComputeSubtotal())
	}

	return total
}
