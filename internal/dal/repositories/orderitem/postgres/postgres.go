package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ordercloud/order/internal/dal/postgres"
	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

var itemColumns = []string{
	"order_id",
	"product_id",
	"quantity",
	"price::text",
	"subtotal::text",
}

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	OrderId   int64  `db:"order_id"`
	ProductId string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	Price     string `db:"price"`
	Subtotal  string `db:"subtotal"`
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (i *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	price, err := decimal.NewFromString(i.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}

	subtotal, err := decimal.NewFromString(i.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtotal: %w", err)
	}

	return &orderitem.OrderItem{
		ProductID: i.ProductId,
		Quantity:  i.Quantity,
		Price:     price,
		Subtotal:  subtotal,
	}, nil
}

type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts the items of a single order. Row ids are assigned in
// slice order, which preserves display order on read.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, orderID int64, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	now := time.Now()
	builder := sq.Insert("order_items").
		Columns("order_id", "product_id", "quantity", "price", "subtotal", "created_at").
		PlaceholderFormat(sq.Dollar)

	for _, item := range items {
		builder = builder.Values(
			orderID,
			item.ProductID,
			item.Quantity,
			item.Price.String(),
			item.Subtotal.String(),
			now,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return items, nil
}

// ListByOrderIDs retrieves items grouped by order id, in insertion order.
func (r *PostgresOrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orderitem.OrderItem, error) {
	result := make(map[int64][]orderitem.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query, args, err := sq.Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.Price,
			&dal.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result[dal.OrderId] = append(result[dal.OrderId], *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
