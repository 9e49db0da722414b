package ordersvc

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ordercloud/order/internal/dal/interfaces/iorderitemrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/iorderrepo"
	"github.com/ordercloud/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/service/models/orderevent"
	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/ordercloud/order/internal/service/models/outbox"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for Postgres shared by the fake
// repositories.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]order.Order
	items  map[int64][]orderitem.OrderItem
	outbox []outbox.OutboxMessage
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[int64]order.Order),
		items:  make(map[int64][]orderitem.OrderItem),
	}
}

type fakeUOW struct {
	store     *memStore
	began     bool
	committed bool
}

func (u *fakeUOW) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUOW) Commit(ctx context.Context) error {
	u.committed = true
	return nil
}

func (u *fakeUOW) Rollback(ctx context.Context) error { return nil }

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{store: u.store}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeOrderItemRepo{store: u.store}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{store: u.store}
}

type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextID++
	o.ID = r.store.nextID

	row := o
	row.Items = nil
	r.store.orders[o.ID] = row

	return o, nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	return &o, nil
}

func (r *fakeOrderRepo) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []order.Order
	for _, o := range r.store.orders {
		if len(filter.AccountIds) > 0 && !containsString(filter.AccountIds, o.AccountID) {
			continue
		}
		if len(filter.Ids) > 0 && !containsInt64(filter.Ids, o.ID) {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })

	return result, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status, updatedAt time.Time) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.store.orders[id] = o

	return &o, nil
}

type fakeOrderItemRepo struct {
	store *memStore
}

func (r *fakeOrderItemRepo) BulkInsert(ctx context.Context, orderID int64, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.items[orderID] = append([]orderitem.OrderItem{}, items...)

	return items, nil
}

func (r *fakeOrderItemRepo) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orderitem.OrderItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make(map[int64][]orderitem.OrderItem)
	for _, id := range orderIDs {
		if items, ok := r.store.items[id]; ok {
			result[id] = items
		}
	}

	return result, nil
}

type fakeOutboxRepo struct {
	store *memStore
}

func (r *fakeOutboxRepo) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.outbox = append(r.store.outbox, msg)

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) Delete(ctx context.Context, id int64) error { return nil }

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsInt64(haystack []int64, needle int64) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func newTestService(store *memStore) *OrderService {
	return MustNewOrderService(
		WithUnitOfWorkFactory(func() UnitOfWork {
			return &fakeUOW{store: store}
		}),
	)
}

func validRequest() order.CreateOrderRequest {
	return order.CreateOrderRequest{
		AccountID: "acc-1",
		Items: []orderitem.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromFloat(9.99)},
		},
		ShippingAddress: "1 Main St",
	}
}

func TestCreateOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, order.StatusPlaced, created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromFloat(19.98)),
		"got total %s", created.TotalAmount)
	require.Len(t, created.Items, 1)
	assert.True(t, created.Items[0].Subtotal.Equal(decimal.NewFromFloat(19.98)))
	assert.False(t, created.CreatedAt.IsZero())

	// The creation event is recorded in the same transaction.
	require.Len(t, store.outbox, 1)
	var event orderevent.OrderEvent
	require.NoError(t, json.Unmarshal(store.outbox[0].Payload, &event))
	assert.Equal(t, orderevent.TypeCreated, event.Type)
	assert.Equal(t, created.ID, event.OrderID)
	assert.NotEmpty(t, event.EventID)
}

func TestCreateOrderRejectedBeforePersist(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	req := validRequest()
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)
	require.Error(t, err)

	var verrs order.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.outbox)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.GetOrderByID(context.Background(), 42)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestGetOrdersByAccountEmpty(t *testing.T) {
	svc := newTestService(newMemStore())

	orders, err := svc.GetOrdersByAccount(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestCreateThenListByAccount(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	orders, err := svc.GetOrdersByAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, created.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "p1", orders[0].Items[0].ProductID)
}

func TestCancelOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// create + cancel events
	require.Len(t, store.outbox, 2)
	var event orderevent.OrderEvent
	require.NoError(t, json.Unmarshal(store.outbox[1].Payload, &event))
	assert.Equal(t, orderevent.TypeCancelled, event.Type)
}

func TestCancelOrderGuards(t *testing.T) {
	for _, status := range []order.Status{order.StatusShipped, order.StatusCompleted, order.StatusCancelled} {
		store := newMemStore()
		svc := newTestService(store)

		created, err := svc.CreateOrder(context.Background(), validRequest())
		require.NoError(t, err)

		// Force the order into the terminal-ish state directly.
		o := store.orders[created.ID]
		o.Status = status
		store.orders[created.ID] = o

		_, err = svc.CancelOrder(context.Background(), created.ID)
		assert.ErrorIs(t, err, ErrCannotCancel, "status %s", status)
	}
}

func TestCancelOrderNotFound(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.CancelOrder(context.Background(), 999)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), created.ID, order.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, updated.Status)

	var event orderevent.OrderEvent
	require.NoError(t, json.Unmarshal(store.outbox[1].Payload, &event))
	assert.Equal(t, orderevent.TypeStatusUpdated, event.Type)
	assert.Equal(t, order.StatusPaid, event.Status)
}

func TestUpdateOrderStatusIllegalTransition(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), created.ID, order.StatusShipped)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// Submitting the current status again is not a legal transition either.
	_, err = svc.UpdateOrderStatus(context.Background(), created.ID, order.StatusPlaced)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// The stored status is untouched.
	stored, err := svc.GetOrderByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, stored.Status)
}

func TestEventsQueue(t *testing.T) {
	assert.Equal(t, "oms.order.events", EventsQueue())

	viper.Set("rabbitmq.events.queue", "custom.events")
	defer viper.Set("rabbitmq.events.queue", "")

	assert.Equal(t, "custom.events", EventsQueue())
}

func TestRecordedEventTargetsTheEventsQueue(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	// Routing key and queue name match what the app declares at startup.
	require.Len(t, store.outbox, 1)
	assert.Equal(t, EventsQueue(), store.outbox[0].QueueName)
	assert.Equal(t, EventsQueue(), store.outbox[0].RoutingKey)
}

func TestUpdateOrderStatusToCancelledEmitsCancelEvent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), created.ID, order.StatusCancelled)
	require.NoError(t, err)

	var event orderevent.OrderEvent
	require.NoError(t, json.Unmarshal(store.outbox[1].Payload, &event))
	assert.Equal(t, orderevent.TypeCancelled, event.Type)
}
