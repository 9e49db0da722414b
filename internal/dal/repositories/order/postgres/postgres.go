package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ordercloud/order/internal/dal/postgres"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id",
	"account_id",
	"total_amount::text",
	"shipping_address",
	"payment_id",
	"status",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model. Amounts are read as
// text and parsed, avoiding float round trips.
type OrderDal struct {
	Id              int64     `db:"id"`
	AccountId       string    `db:"account_id"`
	TotalAmount     string    `db:"total_amount"`
	ShippingAddress string    `db:"shipping_address"`
	PaymentId       *string   `db:"payment_id"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(o.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total amount: %w", err)
	}

	paymentID := ""
	if o.PaymentId != nil {
		paymentID = *o.PaymentId
	}

	return &order.Order{
		ID:              o.Id,
		AccountID:       o.AccountId,
		TotalAmount:     total,
		ShippingAddress: o.ShippingAddress,
		PaymentID:       paymentID,
		Status:          status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           []orderitem.OrderItem{}, // Populated separately
	}, nil
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

func (r *PostgresOrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.AccountId,
		&dal.TotalAmount,
		&dal.ShippingAddress,
		&dal.PaymentId,
		&dal.Status,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// Insert persists a new order row and returns it with the assigned id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	var paymentID *string
	if o.PaymentID != "" {
		paymentID = &o.PaymentID
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"account_id",
			"total_amount",
			"shipping_address",
			"payment_id",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			o.AccountID,
			o.TotalAmount.String(),
			o.ShippingAddress,
			paymentID,
			o.Status.String(),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := r.scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted.Items = append(inserted.Items, o.Items...)

	return *inserted, nil
}

// GetByID retrieves a single order row without items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := r.scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// Query retrieves order rows based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC, id DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.AccountIds) > 0 {
		builder = builder.Where(sq.Eq{"account_id": filter.AccountIds})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.AccountId,
			&dal.TotalAmount,
			&dal.ShippingAddress,
			&dal.PaymentId,
			&dal.Status,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus sets a new status on an order row and returns the updated row.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status, updatedAt time.Time) (*order.Order, error) {
	query, args, err := sq.Update("orders").
		Set("status", status.String()).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columnList()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	o, err := r.scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return o, nil
}

func columnList() string {
	list := ""
	for i, col := range orderColumns {
		if i > 0 {
			list += ", "
		}
		list += col
	}

	return list
}
