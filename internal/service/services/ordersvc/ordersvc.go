package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ordercloud/order/internal/dal/interfaces/iorderitemrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/iorderrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordercloud/order/internal/dal/postgres"
	"github.com/ordercloud/order/internal/dal/uow"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/service/models/orderevent"
	"github.com/ordercloud/order/internal/service/models/outbox"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

var (
	// ErrIllegalTransition is returned when a status update is not allowed by
	// the lifecycle transition table.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrCannotCancel is returned when an order is past the point of
	// cancellation.
	ErrCannotCancel = errors.New("order can no longer be cancelled")
)

// UnitOfWork binds the repositories to a single transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// OrderService is a service for managing orders.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() UnitOfWork
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() UnitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how transactions are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() UnitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// CreateOrder validates the request, derives subtotals and the order total,
// and persists the order with its items in one transaction. The initial
// status is always PLACED.
func (s *OrderService) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := req.Validate(); err != nil {
		return order.Order{}, err
	}

	now := time.Now()
	o := order.Order{
		AccountID:       req.AccountID,
		Items:           req.Items,
		TotalAmount:     req.ComputeTotal(),
		ShippingAddress: req.ShippingAddress,
		PaymentID:       req.PaymentMethod,
		Status:          order.StatusPlaced,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].ComputeSubtotal()
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	insertedItems, err := work.OrderItemRepository().BulkInsert(ctx, inserted.ID, o.Items)
	if err != nil {
		return order.Order{}, err
	}
	inserted.Items = insertedItems

	if err := s.recordEvent(ctx, work, orderevent.TypeCreated, inserted); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return inserted, nil
}

// GetOrderByID retrieves one order with its items. Returns order.ErrNotFound
// when no order matches.
func (s *OrderService) GetOrderByID(ctx context.Context, id int64) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrderByID")
	defer span.End()

	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items[o.ID]

	return *o, nil
}

// GetOrdersByAccount retrieves every order owned by an account, newest first.
// An account with no orders yields an empty slice, not an error.
func (s *OrderService) GetOrdersByAccount(ctx context.Context, accountID string) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrdersByAccount")
	defer span.End()

	return s.QueryOrders(ctx, order.QueryOrdersModel{AccountIds: []string{accountID}})
}

// QueryOrders retrieves orders with their items based on filter criteria.
func (s *OrderService) QueryOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.QueryOrders")
	defer span.End()

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// CancelOrder transitions an order to CANCELLED. Orders already shipped,
// completed or cancelled are rejected.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	current, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	if !current.Status.Cancellable() {
		return order.Order{}, fmt.Errorf("%w: status is %s", ErrCannotCancel, current.Status)
	}

	cancelled, err := s.applyStatus(ctx, work, current, order.StatusCancelled, orderevent.TypeCancelled)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return cancelled, nil
}

// UpdateOrderStatus transitions an order to a new status. The transition must
// be legal per the lifecycle table.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() { _ = work.Rollback(ctx) }()

	current, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	if !current.Status.CanTransitionTo(status) {
		return order.Order{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, status)
	}

	eventType := orderevent.TypeStatusUpdated
	if status == order.StatusCancelled {
		eventType = orderevent.TypeCancelled
	}

	updated, err := s.applyStatus(ctx, work, current, status, eventType)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return updated, nil
}

func (s *OrderService) applyStatus(
	ctx context.Context,
	work UnitOfWork,
	current *order.Order,
	status order.Status,
	eventType orderevent.Type,
) (order.Order, error) {
	updated, err := work.OrderRepository().UpdateStatus(ctx, current.ID, status, time.Now())
	if err != nil {
		return order.Order{}, err
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, []int64{updated.ID})
	if err != nil {
		return order.Order{}, err
	}
	updated.Items = items[updated.ID]

	if err := s.recordEvent(ctx, work, eventType, *updated); err != nil {
		return order.Order{}, err
	}

	return *updated, nil
}

// EventsQueue returns the RabbitMQ queue order events are published to. The
// same name is used as the routing key and for the queue declaration at
// startup.
func EventsQueue() string {
	queueName := viper.GetString("rabbitmq.events.queue")
	if queueName == "" {
		queueName = "oms.order.events"
	}

	return queueName
}

// recordEvent writes a lifecycle event into the outbox within the current
// transaction. The outbox worker publishes it to RabbitMQ.
func (s *OrderService) recordEvent(ctx context.Context, work UnitOfWork, eventType orderevent.Type, o order.Order) error {
	event := orderevent.OrderEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		OrderID:     o.ID,
		AccountID:   o.AccountID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	queueName := EventsQueue()

	maxRetries := viper.GetInt("rabbitmq.events.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return work.OutboxRepository().Insert(ctx, outbox.OutboxMessage{
		QueueName:   queueName,
		RoutingKey:  queueName,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
