package iorderitemrepo

import (
	"context"

	"github.com/ordercloud/order/internal/service/models/orderitem"
)

// IOrderItemRepository is the persistence boundary for order items.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, orderID int64, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orderitem.OrderItem, error)
}
