package orderevent

import (
	"time"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// Type identifies the lifecycle change an event records.
type Type string

const (
	TypeCreated       Type = "order.created"
	TypeStatusUpdated Type = "order.status_updated"
	TypeCancelled     Type = "order.cancelled"
)

// OrderEvent is published whenever an order changes. EventID is a uuid
// assigned at emission time.
type OrderEvent struct {
	EventID     string          `json:"event_id"`
	Type        Type            `json:"type"`
	OrderID     int64           `json:"order_id"`
	AccountID   string          `json:"account_id"`
	Status      order.Status    `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
