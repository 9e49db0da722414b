package iorderrepo

import (
	"context"
	"time"

	"github.com/ordercloud/order/internal/service/models/order"
)

// IOrderRepository is the persistence boundary for order rows. Items are
// handled by the order-item repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status, updatedAt time.Time) (*order.Order, error)
}
